// Package generated receives registries generated by the shadowgen tests.
package generated

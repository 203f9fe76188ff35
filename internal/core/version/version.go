// Package version carries the build signature the integrity guard compares
// against the persisted marker.
package version

// Version is stamped at build time via -ldflags. The default marks local
// builds so a dev binary never matches a released marker by accident.
var Version = "dev"

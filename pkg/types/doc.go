// Package types defines the CylinderRecord entity, the CylinderTable
// collection, the Store capability interfaces, the Config for backend
// selection, and the standard error values shared by every layer of the
// lpgtrack system.
package types

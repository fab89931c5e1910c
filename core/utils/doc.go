// Package utils provides common utility functions for the netbox-reconciler application.
// It includes helpers for type conversion and slug generation that are shared by the
// API client and the reconcile engine.
package utils

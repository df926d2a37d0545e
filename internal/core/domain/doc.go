// Package domain contains the core business entities and rules for docsight.
// It has no dependencies on infrastructure or frameworks.
package domain

// Package resolvers provides the stock resolver units for the resolution
// pipeline: extension-based media file classification and a catch-all
// folder resolver.
package resolvers

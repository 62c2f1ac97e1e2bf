// Package directory implements the artist directory domain: locations,
// artists and shops, plus the services that read and write them.
//
// # Structure
//
// The package splits along the read/write boundary:
//
//   - LocationResolver resolves country/state/city name triples into city
//     ids, creating missing rows idempotently.
//   - IngestService owns the write path: artist submission, slug
//     assignment and shop linking, with secondary-step failures reported
//     as degraded steps instead of errors.
//   - QueryService owns the read path: every query runs through the cache
//     package with deterministic keys and per-resource TTLs, and exposes
//     the invalidation hooks the write path calls.
//
// Storage access goes through the LocationRepository, ArtistRepository and
// ShopRepository interfaces; Bun-backed implementations live alongside them
// and are the only code in the package that touches SQL.
package directory

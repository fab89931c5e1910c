// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation (X-API-Key or Bearer token) protecting the API.
//     Selected paths such as /health can be exempted.
//   - rayid: assigns a unique request ID (RayID) to every request, stores it in
//     the context locals and echoes it in the X-Ray-ID response header.
//
// Register rayid first so every later log line can carry the ID.
package middleware

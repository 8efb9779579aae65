// Package models defines the client-side shapes of users, incidents and
// notifications as exchanged with the iReporter REST API.
//
// Backend payloads are normalized on decode: identifiers become a canonical
// ID whatever their wire form, timestamps accept zoned and naive ISO-8601,
// and a user's role/is_admin pair is folded into a single Role.
package models

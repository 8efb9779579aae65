// Package services contains the application services of the iReporter
// client: users, incidents and notifications.
//
// Services sit between the views and the HTTP adapters. They check the
// required fields of a form before any network call (failures match
// ErrValidation) and report a rejected stored token to the session through
// a SessionGuard so the user is logged out.
package services

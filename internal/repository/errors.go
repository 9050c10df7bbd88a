// Package repository is the raw database/sql data access layer. Missing
// rows surface as sql.ErrNoRows; the sentinels below cover the cases
// higher layers must tell apart from generic storage failures.
package repository

import "errors"

// ErrEmailExists is returned by UserRepo.Create when the normalized
// email collides with an existing row. The service layer translates it
// into a conflict error.
var ErrEmailExists = errors.New("email already exists")

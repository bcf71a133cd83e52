// Package model defines the data types shared across package boundaries:
// the Command wire type exchanged between the CLI client and the daemon,
// and the fetch-journal records rendered by the report writers.
package model

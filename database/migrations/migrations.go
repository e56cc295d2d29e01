// Package migrations registers the SQL schema. Importing it (for its init
// side effect) is enough for the migrate commands to see every migration.
package migrations

// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) runs the init functions of each concrete backend, which register
// their factories with the storage package. Importing it makes the "sqlite"
// and "postgres" storage kinds available at runtime.
package all

import (
	_ "mitoref/internal/storage/postgres"
	_ "mitoref/internal/storage/sqlite"
)

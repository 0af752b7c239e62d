// Package migrations содержит встроенные SQL миграции сервиса ценообразования.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

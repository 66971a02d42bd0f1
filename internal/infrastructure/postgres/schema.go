package postgres

import (
	"context"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT        NOT NULL,
	id         TEXT        NOT NULL,
	data       JSONB       NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS idx_documents_data ON documents USING GIN (data jsonb_path_ops);
CREATE INDEX IF NOT EXISTS idx_mouvements_material
	ON documents ((data->>'materialId')) WHERE collection = 'mouvements_stock';
`

// Migrate crea la tabla de documentos si no existe.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return persistence("migrate", err)
	}
	return nil
}

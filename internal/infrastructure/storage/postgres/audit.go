package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"stockledger/internal/core/id"
	"stockledger/internal/domain/audit"
)

// CompressionAlgo specifies the compression algorithm used for stored changes.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// DefaultCompressThreshold is the payload size above which changes are compressed.
const DefaultCompressThreshold = 4 * 1024

// AuditRecord is a stored journal row.
type AuditRecord struct {
	ID         id.ID           `json:"id"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	Action     audit.Action    `json:"action"`
	UserID     string          `json:"userId,omitempty"`
	Changes    json.RawMessage `json:"changes"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// AuditService is the movement journal stored in sys_audit.
type AuditService struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

var _ audit.Journal = (*AuditService)(nil)

// NewAuditService creates a new audit service.
func NewAuditService(txManager *TxManager) (*AuditService, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &AuditService{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: DefaultCompressThreshold,
	}, nil
}

// Record implements audit.Journal. It writes inside the unit of work in ctx.
func (s *AuditService) Record(ctx context.Context, entry audit.Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	changes, compressed, algo, err := s.encode(entry.Changes)
	if err != nil {
		return err
	}

	const sql = `
		INSERT INTO sys_audit (
			id, entity_type, entity_id, action, user_id,
			changes, changes_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.txManager.GetQuerier(ctx).Exec(ctx, sql,
		id.New(), entry.EntityType, entry.EntityID, string(entry.Action), nullable(entry.UserID),
		changes, compressed, string(algo), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// History returns the newest journal rows of an entity with changes decompressed.
func (s *AuditService) History(ctx context.Context, entityType, entityID string, limit int) ([]AuditRecord, error) {
	const sql = `
		SELECT id, entity_type, entity_id, action, COALESCE(user_id, ''),
		       changes, changes_compressed, compression_algo, created_at
		FROM sys_audit
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`
	rows, err := s.txManager.GetQuerier(ctx).Query(ctx, sql, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []AuditRecord
	for rows.Next() {
		var (
			r          AuditRecord
			action     string
			changes    []byte
			compressed []byte
			algo       string
		)
		if err := rows.Scan(&r.ID, &r.EntityType, &r.EntityID, &action, &r.UserID,
			&changes, &compressed, &algo, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		r.Action = audit.Action(action)
		if r.Changes, err = s.decode(changes, compressed, CompressionAlgo(algo)); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *AuditService) encode(changes map[string]any) ([]byte, []byte, CompressionAlgo, error) {
	raw, err := json.Marshal(changes)
	if err != nil {
		return nil, nil, "", fmt.Errorf("marshal changes: %w", err)
	}
	if len(raw) <= s.compressThreshold {
		return raw, nil, CompressionNone, nil
	}
	return nil, s.encoder.EncodeAll(raw, nil), CompressionZstd, nil
}

func (s *AuditService) decode(changes, compressed []byte, algo CompressionAlgo) (json.RawMessage, error) {
	if algo != CompressionZstd || len(compressed) == 0 {
		return changes, nil
	}
	out, err := s.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress changes: %w", err)
	}
	return out, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

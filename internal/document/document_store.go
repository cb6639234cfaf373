package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go-payledger/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	// URLPrefix is the path under which stored documents resolve.
	URLPrefix = "/api/v1/documents/"

	blobCacheKeyPrefix = "documents:blob:"
	blobCacheTTL       = 10 * time.Minute
)

var (
	ErrNotFound    = apperror.New(apperror.CodeNotFound, "Document not found", http.StatusNotFound)
	ErrEmptyFile   = errors.New("document payload is empty")
	ErrUnsupported = errors.New("only PDF letters are accepted")
	ErrTooLarge    = errors.New("document exceeds the size limit")
)

type Store interface {
	Upload(ctx context.Context, companyID string, data []byte, name, mime string) (StoredDocument, error)
	Fetch(ctx context.Context, companyID, id string) (Document, error)
}

type store struct {
	db      *gorm.DB
	rdb     *redis.Client
	sf      *singleflight.Group
	maxSize int64
	logger  *zap.Logger
}

func NewStore(db *gorm.DB, rdb *redis.Client, maxSize int64, logger ...*zap.Logger) Store {
	l := zap.L().Named("document.store")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("document.store")
	}
	return &store{
		db:      db,
		rdb:     rdb,
		sf:      &singleflight.Group{},
		maxSize: maxSize,
		logger:  l,
	}
}

func (s *store) Upload(ctx context.Context, companyID string, data []byte, name, mime string) (StoredDocument, error) {
	if len(data) == 0 {
		return StoredDocument{}, ErrEmptyFile
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return StoredDocument{}, ErrTooLarge
	}
	if !strings.EqualFold(mime, "application/pdf") {
		return StoredDocument{}, ErrUnsupported
	}

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return StoredDocument{}, err
	}

	doc := &Document{
		ID:        uuid.New(),
		CompanyID: companyUUID,
		Name:      name,
		MIME:      mime,
		Data:      data,
		Size:      int64(len(data)),
	}

	if err := s.db.WithContext(ctx).Create(doc).Error; err != nil {
		return StoredDocument{}, err
	}

	s.logger.Info("document stored",
		zap.String("document_id", doc.ID.String()),
		zap.String("company_id", companyID),
		zap.Int64("size", doc.Size),
	)

	return StoredDocument{
		ID:   doc.ID.String(),
		Name: doc.Name,
		MIME: doc.MIME,
		URL:  URLPrefix + doc.ID.String(),
	}, nil
}

// cachedBlob is the redis representation of a fetched document.
type cachedBlob struct {
	Name string `json:"name"`
	MIME string `json:"mime"`
	Data []byte `json:"data"`
}

// Fetch loads a document, serving repeat reads from redis and collapsing
// concurrent loads of the same blob through singleflight.
func (s *store) Fetch(ctx context.Context, companyID, id string) (Document, error) {
	key := blobCacheKeyPrefix + id

	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var blob cachedBlob
			if err := json.Unmarshal(raw, &blob); err == nil {
				return Document{Name: blob.Name, MIME: blob.MIME, Data: blob.Data}, nil
			}
		}
	}

	v, err, _ := s.sf.Do(fmt.Sprintf("%s:%s", companyID, id), func() (any, error) {
		var doc Document
		err := s.db.WithContext(ctx).
			Where("id = ?", id).
			Where("company_id = ?", companyID).
			First(&doc).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Document{}, ErrNotFound
		}
		if err != nil {
			return Document{}, err
		}

		if s.rdb != nil {
			if raw, err := json.Marshal(cachedBlob{Name: doc.Name, MIME: doc.MIME, Data: doc.Data}); err == nil {
				if err := s.rdb.Set(ctx, key, raw, blobCacheTTL).Err(); err != nil {
					s.logger.Warn("cache document failed", zap.String("document_id", id), zap.Error(err))
				}
			}
		}
		return doc, nil
	})
	if err != nil {
		return Document{}, err
	}
	return v.(Document), nil
}

// IDFromURL extracts the document id from a stored reference URL.
func IDFromURL(url string) (string, bool) {
	if i := strings.LastIndex(url, URLPrefix); i >= 0 {
		id := url[i+len(URLPrefix):]
		if _, err := uuid.Parse(id); err == nil {
			return id, true
		}
	}
	return "", false
}

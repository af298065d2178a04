package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"go.uber.org/zap"

	"gonotes/internal/notes/domain/entities"
	"gonotes/internal/notes/ports/cache"
	"gonotes/internal/notes/ports/repositories"
	"gonotes/internal/notes/resilience"
	"gonotes/pkg/logger"
)

// Константы сообщений кэша заметок.
const (
	LogListCacheHit      = "note list served from cache"
	LogListCacheMiss     = "note list cache miss"
	LogCacheUnavailable  = "note cache unavailable, using database"
	LogCacheDecodeFailed = "cached note list is corrupted"
	LogInvalidateFailed  = "failed to invalidate note list cache"
	LogVersionCorrupted  = "note list version is corrupted"

	listKeyPrefix    = "notes:list:"
	versionKeyPrefix = "notes:ver:"
)

// VersionKey возвращает ключ счетчика версий списка заметок пользователя.
// Каждая запись заметки увеличивает счетчик.
func VersionKey(userID int64) string {
	return versionKeyPrefix + strconv.FormatInt(userID, 10)
}

// ListKey возвращает ключ кэша списка заметок пользователя для версии version.
// Список, прочитанный до записи, сохраняется под старой версией и больше не читается.
func ListKey(userID, version int64) string {
	return listKeyPrefix + strconv.FormatInt(userID, 10) + ":" + strconv.FormatInt(version, 10)
}

// CachedNoteRepository кэширует списки заметок поверх другого NoteRepository.
// Ошибки кэша не влияют на результат: запрос уходит в базу.
type CachedNoteRepository struct {
	next    repositories.NoteRepository
	cache   cache.Cache
	breaker *resilience.CircuitBreaker
	ttl     time.Duration
}

// NewCachedNoteRepository оборачивает репозиторий кэшем списков.
func NewCachedNoteRepository(
	next repositories.NoteRepository,
	c cache.Cache,
	breaker *resilience.CircuitBreaker,
	ttl time.Duration,
) repositories.NoteRepository {
	return &CachedNoteRepository{
		next:    next,
		cache:   c,
		breaker: breaker,
		ttl:     ttl,
	}
}

// ListByUserID читает список из кэша, а при промахе из базы с последующим заполнением кэша.
// Версия списка читается до обращения к базе.
func (r *CachedNoteRepository) ListByUserID(ctx context.Context, userID int64) ([]*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "CachedNoteRepository.ListByUserID"), zap.Int64("userID", userID))

	version, ok := r.version(ctx, log, userID)
	if !ok {
		return r.next.ListByUserID(ctx, userID)
	}
	key := ListKey(userID, version)

	var cached string
	err := r.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		cached, err = r.cache.Get(ctx, key)
		return err
	})
	if err != nil {
		log.Warn(ctx, LogCacheUnavailable, zap.Error(err))
	}

	if cached != "" {
		var notes []*entities.Note
		if err := json.Unmarshal([]byte(cached), &notes); err == nil {
			log.Debug(ctx, LogListCacheHit, zap.Int("count", len(notes)))
			return notes, nil
		}
		log.Warn(ctx, LogCacheDecodeFailed)
	} else {
		log.Debug(ctx, LogListCacheMiss)
	}

	notes, err := r.next.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(notes)
	if err != nil {
		return notes, nil
	}
	if err := r.breaker.Execute(ctx, func(ctx context.Context) error {
		return r.cache.Set(ctx, key, string(payload), r.ttl)
	}); err != nil {
		log.Warn(ctx, LogCacheUnavailable, zap.Error(err))
	}

	return notes, nil
}

// version возвращает текущую версию списка; отсутствующий счетчик - версия 0.
// false означает, что кэш сейчас использовать нельзя.
func (r *CachedNoteRepository) version(ctx context.Context, log *logger.Logger, userID int64) (int64, bool) {
	var raw string
	err := r.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		raw, err = r.cache.Get(ctx, VersionKey(userID))
		return err
	})
	if err != nil {
		log.Warn(ctx, LogCacheUnavailable, zap.Error(err))
		return 0, false
	}
	if raw == "" {
		return 0, true
	}

	version, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Warn(ctx, LogVersionCorrupted, zap.String("value", raw))
		return 0, false
	}
	return version, true
}

// GetByID не кэшируется.
func (r *CachedNoteRepository) GetByID(ctx context.Context, noteID, userID int64) (*entities.Note, error) {
	return r.next.GetByID(ctx, noteID, userID)
}

// Create сохраняет заметку и увеличивает версию списка владельца.
func (r *CachedNoteRepository) Create(ctx context.Context, note *entities.Note) (*entities.Note, error) {
	created, err := r.next.Create(ctx, note)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, note.UserID)
	return created, nil
}

// Update обновляет заметку и увеличивает версию списка владельца.
func (r *CachedNoteRepository) Update(ctx context.Context, note *entities.Note) (*entities.Note, error) {
	updated, err := r.next.Update(ctx, note)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, note.UserID)
	return updated, nil
}

// Delete удаляет заметку и увеличивает версию списка владельца.
func (r *CachedNoteRepository) Delete(ctx context.Context, noteID, userID int64) error {
	if err := r.next.Delete(ctx, noteID, userID); err != nil {
		return err
	}
	r.invalidate(ctx, userID)
	return nil
}

func (r *CachedNoteRepository) invalidate(ctx context.Context, userID int64) {
	err := r.breaker.Execute(ctx, func(ctx context.Context) error {
		_, err := r.cache.Incr(ctx, VersionKey(userID))
		return err
	})
	if err != nil {
		logger.Log(ctx).Warn(ctx, LogInvalidateFailed, zap.Int64("userID", userID), zap.Error(err))
	}
}

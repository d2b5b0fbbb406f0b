package sessions

import (
	"encoding/json"

	"github.com/hammamikhairi/ottoclient/internal/domain"
	"github.com/hammamikhairi/ottoclient/internal/logger"
	"github.com/hammamikhairi/ottoclient/internal/storage"
)

// Sync applies session-list events pushed by the server to the cache.
type Sync struct {
	cache Cache
	log   *logger.Logger
}

// NewSync creates a Sync writing into cache.
func NewSync(cache Cache, log *logger.Logger) *Sync {
	return &Sync{cache: cache, log: log.With("sync")}
}

// sessionRef is the payload of rename and delete events. Both spellings of
// each field are accepted.
type sessionRef struct {
	ID          string `json:"id"`
	SessionID   string `json:"session_id"`
	SessionName string `json:"session_name"`
	Name        string `json:"name"`
}

func (r sessionRef) id() string {
	if r.ID != "" {
		return r.ID
	}
	return r.SessionID
}

func (r sessionRef) name() string {
	if r.SessionName != "" {
		return r.SessionName
	}
	return r.Name
}

// Apply handles one event. Malformed and unknown events are logged and
// ignored.
func (s *Sync) Apply(ev domain.Event) {
	switch ev.Type {
	case domain.EventSessionCreated, domain.EventSessionUpdated:
		var sess domain.Session
		if err := json.Unmarshal(ev.Data, &sess); err != nil || sess.ID == "" {
			s.log.Warn("bad %s payload: %v", ev.Type, err)
			return
		}
		s.upsert(sess, ev.Type == domain.EventSessionCreated)

	case domain.EventSessionNameUpdated:
		var ref sessionRef
		if err := json.Unmarshal(ev.Data, &ref); err != nil || ref.id() == "" || ref.name() == "" {
			s.log.Warn("bad %s payload: %v", ev.Type, err)
			return
		}
		UpdateSessionName(s.cache, ref.id(), ref.name())

	case domain.EventSessionDeleted:
		var ref sessionRef
		if err := json.Unmarshal(ev.Data, &ref); err != nil || ref.id() == "" {
			s.log.Warn("bad %s payload: %v", ev.Type, err)
			return
		}
		s.cache.MutateAll(func(_ storage.Key, list []domain.Session) ([]domain.Session, bool) {
			if indexOf(list, ref.id()) < 0 {
				return list, false
			}
			return without(list, ref.id()), true
		})

	default:
		s.log.Debug("ignoring event %q", ev.Type)
	}
}

// upsert replaces the session wherever it is cached, or prepends it to its
// family's list when that list is cached and does not hold it yet.
func (s *Sync) upsert(sess domain.Session, created bool) {
	found := false
	s.cache.MutateAll(func(_ storage.Key, list []domain.Session) ([]domain.Session, bool) {
		i := indexOf(list, sess.ID)
		if i < 0 {
			return list, false
		}
		found = true
		list[i] = sess
		return list, true
	})
	if found {
		return
	}

	fam, ok := FamilyOf(sess.Type)
	if !ok {
		s.log.Debug("session %s has unknown type %q", sess.ID, sess.Type)
		return
	}
	s.cache.Mutate(fam.Key, func(list []domain.Session) []domain.Session {
		return append([]domain.Session{sess}, list...)
	})
	if created {
		s.log.Debug("session %s added to %s", sess.ID, fam.Key)
	}
}

package storage

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"videosplus/storefront/internal/codec"
	"videosplus/storefront/internal/domain"
	"videosplus/storefront/internal/idgen"
	"videosplus/storefront/internal/logger"
)

// documentSource turns stored bytes into a Document, substituting the seeded default
// when nothing usable is stored. Shared by every backend.
type documentSource struct {
	defaults domain.Defaults
	log      logrus.FieldLogger
	now      func() time.Time
}

func newDocumentSource(defaults domain.Defaults, log logrus.FieldLogger, component string) documentSource {
	return documentSource{defaults: defaults, log: logger.Component(log, component), now: time.Now}
}

func (s documentSource) fresh() *domain.Document {
	return s.defaults.NewDocument(idgen.Timestamp(s.now()))
}

// decode parses raw. Malformed content is logged and replaced by the default document.
func (s documentSource) decode(key string, raw []byte) *domain.Document {
	doc, warnings, err := codec.DecodeWithWarnings(raw)
	if err == nil {
		for _, w := range warnings {
			s.log.WithFields(logrus.Fields{"key": key, "field": w.Field}).Warn("stored document: " + w.Message)
		}
		return doc
	}
	var malformed *codec.MalformedDocumentError
	if errors.As(err, &malformed) {
		s.log.WithError(err).WithField("key", key).Warn("stored document is malformed, using defaults")
	} else {
		s.log.WithError(err).WithField("key", key).Error("failed to decode stored document, using defaults")
	}
	return s.fresh()
}

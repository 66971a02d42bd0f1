package badgerdb

import (
	"strings"

	"github.com/jhoicas/boulangerie-api/pkg/logger"
)

// badgerLogger redirige los mensajes internos de Badger a zerolog.
// Info de Badger se baja a debug: es muy verboso al abrir y compactar.
type badgerLogger struct {
	log *logger.Logger
}

func (l badgerLogger) Errorf(f string, v ...interface{}) {
	l.log.Error().Msgf(strings.TrimSpace(f), v...)
}

func (l badgerLogger) Warningf(f string, v ...interface{}) {
	l.log.Warn().Msgf(strings.TrimSpace(f), v...)
}

func (l badgerLogger) Infof(f string, v ...interface{}) {
	l.log.Debug().Msgf(strings.TrimSpace(f), v...)
}

func (l badgerLogger) Debugf(f string, v ...interface{}) {
	l.log.Trace().Msgf(strings.TrimSpace(f), v...)
}

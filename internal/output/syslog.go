package output

import (
	"log/syslog"

	"github.com/scribery/aushape-go/internal/aushapeerr"
)

// facilityByName mirrors glibc's syslog.h facilitynames table, used to
// resolve a --syslog-facility flag value the way the original CLI's
// aushape_syslog_facility_from_str did.
var facilityByName = map[string]syslog.Priority{
	"kern":     syslog.LOG_KERN,
	"user":     syslog.LOG_USER,
	"mail":     syslog.LOG_MAIL,
	"daemon":   syslog.LOG_DAEMON,
	"auth":     syslog.LOG_AUTH,
	"syslog":   syslog.LOG_SYSLOG,
	"lpr":      syslog.LOG_LPR,
	"news":     syslog.LOG_NEWS,
	"uucp":     syslog.LOG_UUCP,
	"cron":     syslog.LOG_CRON,
	"authpriv": syslog.LOG_AUTHPRIV,
	"ftp":      syslog.LOG_FTP,
	"local0":   syslog.LOG_LOCAL0,
	"local1":   syslog.LOG_LOCAL1,
	"local2":   syslog.LOG_LOCAL2,
	"local3":   syslog.LOG_LOCAL3,
	"local4":   syslog.LOG_LOCAL4,
	"local5":   syslog.LOG_LOCAL5,
	"local6":   syslog.LOG_LOCAL6,
	"local7":   syslog.LOG_LOCAL7,
}

// priorityByName mirrors glibc's prioritynames table (severity half only;
// the facility half comes from facilityByName and the two are ORed
// together, matching LOG_MAKEPRI).
var priorityByName = map[string]syslog.Priority{
	"emerg":   syslog.LOG_EMERG,
	"alert":   syslog.LOG_ALERT,
	"crit":    syslog.LOG_CRIT,
	"err":     syslog.LOG_ERR,
	"warning": syslog.LOG_WARNING,
	"notice":  syslog.LOG_NOTICE,
	"info":    syslog.LOG_INFO,
	"debug":   syslog.LOG_DEBUG,
}

// FacilityFromName resolves a syslog facility name, reporting ok=false for
// an unrecognized one.
func FacilityFromName(name string) (syslog.Priority, bool) {
	p, ok := facilityByName[name]
	return p, ok
}

// SeverityFromName resolves a syslog severity name, reporting ok=false for
// an unrecognized one.
func SeverityFromName(name string) (syslog.Priority, bool) {
	p, ok := priorityByName[name]
	return p, ok
}

// Syslog writes each fragment as one discrete syslog message. Unlike File,
// it cannot accept a document split across many Write calls — every call
// must carry a complete, self-contained piece of output, which is why
// IsContinuous reports false. The converter does not consult
// IsContinuous: it writes whatever pieces the configured document-framing
// mode produces, to this sink as to any other.
type Syslog struct {
	w *syslog.Writer
}

// NewSyslog wraps an already-dialed syslog writer.
func NewSyslog(w *syslog.Writer) *Syslog {
	return &Syslog{w: w}
}

func (*Syslog) IsContinuous() bool { return false }

func (s *Syslog) Write(p []byte) error {
	if _, err := s.w.Write(p); err != nil {
		return aushapeerr.Wrap(err, aushapeerr.OutputWriteFailure, "writing to syslog output")
	}
	return nil
}

func (s *Syslog) Close() error {
	if err := s.w.Close(); err != nil {
		return aushapeerr.Wrap(err, aushapeerr.OutputWriteFailure, "closing syslog output")
	}
	return nil
}

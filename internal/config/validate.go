package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type ValidationError struct {
	Problems []string
}

func (v *ValidationError) Add(format string, args ...any) {
	v.Problems = append(v.Problems, fmt.Sprintf(format, args...))
}

func (v *ValidationError) Error() string {
	return fmt.Sprintf("%d validation error(s)", len(v.Problems))
}

func (c *Config) Validate() error {
	v := &ValidationError{}

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			v.Add("%s %s", fieldPath(fe), describe(fe))
		}
	}

	if err := validateListen(c.Server.Listen); err != nil {
		v.Add("server.listen invalid: %v", err)
	}

	if c.Server.TLS.Enabled {
		if c.Server.TLS.CertFile == "" {
			v.Add("server.tls.certFile required when tls.enabled is true")
		} else if err := requireFile(c.resolvePath(c.Server.TLS.CertFile)); err != nil {
			v.Add("server.tls.certFile invalid: %v", err)
		}
		if c.Server.TLS.KeyFile == "" {
			v.Add("server.tls.keyFile required when tls.enabled is true")
		} else if err := requireFile(c.resolvePath(c.Server.TLS.KeyFile)); err != nil {
			v.Add("server.tls.keyFile invalid: %v", err)
		}
	}

	if c.Metrics.Enabled {
		if err := validateListen(c.Metrics.Listen); err != nil {
			v.Add("metrics.listen invalid: %v", err)
		} else if c.Metrics.Listen == c.Server.Listen {
			v.Add("metrics.listen must differ from server.listen")
		}
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RPS <= 0 {
			v.Add("rateLimit.rps must be > 0")
		}
		if c.RateLimit.Burst <= 0 {
			v.Add("rateLimit.burst must be > 0")
		}
	}

	if c.Logging.ScanLog != "" {
		if err := ensureWritable(c.resolvePath(c.Logging.ScanLog)); err != nil {
			v.Add("logging.scanLog invalid: %v", err)
		}
	}

	if len(v.Problems) > 0 {
		sort.Strings(v.Problems)
		return v
	}
	return nil
}

// fieldPath turns "Config.Scan.MaxTextChars" into "scan.maxTextChars".
func fieldPath(fe validator.FieldError) string {
	parts := strings.Split(fe.Namespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = lowerFirst(p)
	}
	return strings.Join(parts, ".")
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", "|")
	case "eq":
		return "must be " + fe.Param()
	case "gt":
		return "must be > " + fe.Param()
	case "gte":
		return "must be >= " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}

func lowerFirst(s string) string {
	switch {
	case s == "":
		return s
	case s == "RPS" || s == "TLS":
		return strings.ToLower(s)
	default:
		return strings.ToLower(s[:1]) + s[1:]
	}
}

func validateListen(addr string) error {
	if strings.TrimSpace(addr) == "" {
		return errors.New("address is required")
	}
	if _, err := net.ResolveTCPAddr("tcp", addr); err != nil {
		return err
	}
	return nil
}

func requireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

func ensureWritable(path string) error {
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	file, err := os.CreateTemp(dir, "clawshield-validate-*")
	if err != nil {
		return err
	}
	name := file.Name()
	if err := file.Close(); err != nil {
		return err
	}
	return os.Remove(name)
}

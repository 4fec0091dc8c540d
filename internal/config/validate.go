package config

import (
	"fmt"
	"log/slog"

	"github.com/fedutinova/mediastore/internal/common"
	"github.com/fedutinova/mediastore/internal/validation"
)

// Validate checks the loaded configuration. A partial set of cloud credentials
// is reported as an error only when StorageStrict is set; otherwise it is logged
// and the process falls back to local storage.
func Validate(cfg Config) error {
	errs := validation.Struct(cfg)
	if len(errs) == 0 {
		return nil
	}

	var fatal validation.ValidationErrors
	var credentials validation.ValidationErrors
	for _, e := range errs {
		switch e.Field {
		case "AWSAccessKey", "AWSSecretKey", "S3Bucket":
			credentials = append(credentials, e)
		default:
			fatal = append(fatal, e)
		}
	}

	if len(credentials) > 0 {
		if cfg.StorageStrict {
			fatal = append(fatal, credentials...)
		} else {
			slog.Warn("partial cloud credentials, falling back to local storage", "details", credentials.Error())
		}
	}

	if len(fatal) > 0 {
		return fmt.Errorf("%w: %s", common.ErrInvalidConfig, fatal.Error())
	}
	return nil
}

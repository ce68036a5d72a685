package encoding

import (
	"log/slog"

	"github.com/cstockton/go-hepmc/event"
	"github.com/fogfish/opts"
)

// Option configures a Decoder or Encoder.
type Option = opts.Option[config]

type config struct {
	logger *slog.Logger

	// header replaces the banner lines written before the first event.
	header []string

	// weightLine writes event weights on a W line instead of the E line.
	weightLine bool

	// validate runs event.Validate on each decoded event.
	validate bool
}

var (
	// WithLogger sets the logger used to report skipped events and abandoned
	// encoders. Defaults to slog.Default().
	WithLogger = opts.ForName[config, *slog.Logger]("logger")

	// WithHeader replaces the banner lines the Encoder writes before the first
	// event. Defaults to the version and start of listing banners.
	WithHeader = opts.ForName[config, []string]("header")

	// WithWeightLine makes the Encoder write event weights on a separate W line.
	WithWeightLine = opts.ForName[config, bool]("weightLine")

	// WithValidation toggles structural validation of decoded events, enabled by
	// default.
	WithValidation = opts.ForName[config, bool]("validate")
)

func newConfig(options []Option) (config, error) {
	cfg := config{
		header:   []string{Latest.Header(), event.BannerStart},
		validate: true,
	}
	if err := opts.Apply(&cfg, options); err != nil {
		return cfg, err
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return cfg, nil
}

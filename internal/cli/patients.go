package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/carelist/internal/cache"
	"github.com/rshade/carelist/internal/config"
	"github.com/rshade/carelist/internal/logging"
	"github.com/rshade/carelist/internal/paging"
	"github.com/rshade/carelist/internal/patient"
	"github.com/rshade/carelist/internal/session"
	"github.com/rshade/carelist/internal/source/cached"
	"github.com/rshade/carelist/internal/source/fixture"
	"github.com/rshade/carelist/internal/source/httpapi"
	"github.com/rshade/carelist/internal/source/pgsource"
	"github.com/rshade/carelist/internal/tui"
)

// Output formats of the non-interactive modes.
const (
	outputTable = "table"
	outputJSON  = "json"

	defaultWorkspace = "default"
)

// ErrUnsupportedOutput is returned for an unknown --output value.
var ErrUnsupportedOutput = errors.New("unsupported output format")

// patientsFlags holds the flags of the patients command.
type patientsFlags struct {
	source    string
	pageSize  int
	maxItems  int
	sort      string
	plain     bool
	styled    bool
	noColor   bool
	output    string
	user      string
	workspace string
	noCache   bool
}

// sortValidator is implemented by sources that know their sortable fields.
type sortValidator interface {
	ValidSortField(field string) bool
}

// newPatientsCmd creates the patients command, the interactive patient list.
func newPatientsCmd(state *rootState) *cobra.Command {
	var flags patientsFlags

	cmd := &cobra.Command{
		Use:   "patients",
		Short: "Browse the patient list",
		Long: `Opens a scrolling patient list that fetches pages as you approach the end.

When stdout is not a terminal, or with --plain, every page is fetched and the
list is printed as a table (or JSON with --output json).`,
		Example: `  # Interactive list of generated patients
  carelist patients

  # Patients of one workspace from the EHR API
  carelist patients --source http --workspace north-clinic

  # JSON export of the first 200 patients sorted by name
  carelist patients --output json --max-items 200 --sort name`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := state.config()
			if err != nil {
				return err
			}
			if err = applyPatientsFlags(cmd, cfg, flags); err != nil {
				return err
			}
			return runPatients(cmd, cfg, flags, state.lookupEnv)
		},
	}

	cmd.Flags().StringVar(&flags.source, "source", "", "page source: fixture, http or postgres (default from config)")
	cmd.Flags().IntVar(&flags.pageSize, "page-size", 0, "records per page (default from config)")
	cmd.Flags().IntVar(&flags.maxItems, "max-items", 0, "stop after this many records (0 = no limit)")
	cmd.Flags().StringVar(&flags.sort, "sort", "", "sort as field or field:order, e.g. nextPickup:asc")
	cmd.Flags().BoolVar(&flags.plain, "plain", false, "print a plain table instead of the interactive list")
	cmd.Flags().BoolVar(&flags.styled, "styled", false, "print a styled table even when stdout is not a terminal")
	cmd.Flags().BoolVar(&flags.noColor, "no-color", false, "disable colors and the interactive list")
	cmd.Flags().StringVarP(&flags.output, "output", "o", outputTable, "non-interactive output: table or json")
	cmd.Flags().StringVar(&flags.user, "user", "", "user to sign in as (default from config or $USER)")
	cmd.Flags().StringVar(&flags.workspace, "workspace", "", "workspace to browse (default from config)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "bypass the page cache")

	return cmd
}

// applyPatientsFlags overrides cfg with the flags that were set.
func applyPatientsFlags(cmd *cobra.Command, cfg *config.Config, flags patientsFlags) error {
	f := cmd.Flags()
	if f.Changed("source") {
		cfg.Source.Kind = flags.source
	}
	if f.Changed("page-size") {
		cfg.Source.PageSize = flags.pageSize
	}
	if f.Changed("max-items") {
		cfg.Source.MaxItems = flags.maxItems
	}
	if f.Changed("sort") {
		cfg.Source.Sort = flags.sort
	}
	if f.Changed("user") {
		cfg.Session.User = flags.user
	}
	if f.Changed("workspace") {
		cfg.Session.Workspace = flags.workspace
	}
	if flags.noCache {
		cfg.Cache.Enabled = false
	}
	if flags.output != outputTable && flags.output != outputJSON {
		return fmt.Errorf("%w: %s", ErrUnsupportedOutput, flags.output)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func runPatients(cmd *cobra.Command, cfg *config.Config, flags patientsFlags, lookupEnv func(string) (string, bool)) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	sess, err := login(cfg, lookupEnv)
	if err != nil {
		return err
	}
	defer sess.Logout()
	ctx = session.NewContext(ctx, sess)
	log.Info().Ctx(ctx).
		Str("session", sess.ID()).
		Str("workspace", sess.Workspace()).
		Str("source", cfg.Source.Kind).
		Msg("session started")

	src, closeSource, err := buildSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	params := cfg.PagingParams()
	if v, ok := src.(sortValidator); ok {
		if err = params.ValidateSortField(v.ValidSortField); err != nil {
			return err
		}
	}
	pager, err := paging.NewPager(withCache(src, cfg, log), params, paging.WithLogger(log))
	if err != nil {
		return err
	}

	mode := tui.DetectOutputMode(flags.styled, flags.noColor, flags.plain)
	if flags.output == outputJSON {
		mode = tui.OutputModePlain
	}
	log.Debug().Ctx(ctx).Str("mode", mode.String()).Msg("output mode selected")

	if mode == tui.OutputModeInteractive {
		return runInteractive(ctx, cfg, pager)
	}

	patients, err := loadAll(ctx, pager)
	if err != nil {
		return err
	}
	return renderPatients(cmd.OutOrStdout(), mode, flags.output, patients)
}

// login opens the session named by the config, defaulting to $USER.
func login(cfg *config.Config, lookupEnv func(string) (string, bool)) (*session.Session, error) {
	user := cfg.Session.User
	if user == "" {
		user, _ = lookupEnv("USER")
	}
	workspace := cfg.Session.Workspace
	if workspace == "" {
		workspace = defaultWorkspace
	}
	sess, err := session.Login(user, workspace)
	if err != nil {
		return nil, fmt.Errorf("signing in: %w", err)
	}
	return sess, nil
}

// buildSource opens the configured page source. The returned func releases it.
func buildSource(ctx context.Context, cfg *config.Config) (paging.PageSource[patient.Summary], func(), error) {
	log := logging.FromContext(ctx)
	noop := func() {}

	switch cfg.Source.Kind {
	case config.SourceFixture:
		fc := cfg.Source.Fixture
		return fixture.New(fixture.Options{
			Count:     fc.Count,
			Seed:      fc.Seed,
			Latency:   fc.Latency,
			FailEvery: fc.FailEvery,
		}), noop, nil

	case config.SourceHTTP:
		timeout := cfg.Source.Timeout
		if timeout <= 0 {
			timeout = httpapi.DefaultTimeout
		}
		client, err := httpapi.New(cfg.Source.BaseURL,
			httpapi.WithHTTPClient(&http.Client{Timeout: timeout}),
			httpapi.WithLogger(log),
		)
		if err != nil {
			return nil, nil, err
		}
		return client, noop, nil

	case config.SourcePostgres:
		src, err := pgsource.Open(ctx, cfg.Source.DSN)
		if err != nil {
			return nil, nil, err
		}
		return src, src.Close, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrInvalidSource, cfg.Source.Kind)
	}
}

// withCache wraps remote sources with the on-disk page cache. Fixture data
// is generated in memory and is never cached.
func withCache(
	src paging.PageSource[patient.Summary],
	cfg *config.Config,
	log zerolog.Logger,
) paging.PageSource[patient.Summary] {
	if !cfg.Cache.Enabled || cfg.Source.Kind == config.SourceFixture {
		return src
	}
	store, err := cache.NewFileStore(cfg.Cache, cache.WithLogger(log))
	if err != nil {
		log.Warn().Err(err).Msg("page cache unavailable, fetching directly")
		return src
	}
	if removed, cleanErr := store.CleanupExpired(); cleanErr == nil && removed > 0 {
		log.Debug().Int("removed", removed).Msg("expired cache entries removed")
	}
	return cached.Wrap(src, store, cacheName(cfg), log)
}

// cacheName identifies the source in cache keys.
func cacheName(cfg *config.Config) string {
	switch cfg.Source.Kind {
	case config.SourceHTTP:
		return cfg.Source.Kind + ":" + cfg.Source.BaseURL
	default:
		return cfg.Source.Kind
	}
}

func runInteractive(ctx context.Context, cfg *config.Config, pager *paging.Pager[patient.Summary]) error {
	zones := zone.New()
	defer zones.Close()

	log := logging.FromContext(ctx)
	model, err := tui.NewPatientsModel(ctx, tui.PatientsOptions{
		Pager:        pager,
		HoldDuration: cfg.List.HoldDuration,
		List: tui.ListTuning{
			Overscan:          cfg.List.Overscan,
			Threshold:         cfg.List.Threshold,
			MinimumBatchSize:  cfg.List.MinimumBatchSize,
			EstimatedItemSize: cfg.List.EstimatedItemSize,
			SmoothScroll:      cfg.List.SmoothScroll,
			StrictSizes:       cfg.List.StrictSizes,
		},
		Zones:  zones,
		Logger: &log,
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err = p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run interactive TUI: %w", err)
	}
	return nil
}

// loadAll walks the pager to the end.
func loadAll(ctx context.Context, pager *paging.Pager[patient.Summary]) ([]patient.Summary, error) {
	for pager.HasNextPage() {
		if err := pager.LoadNextPage(ctx); err != nil {
			return nil, err
		}
	}
	return pager.Items(), nil
}

func renderPatients(w io.Writer, mode tui.OutputMode, output string, patients []patient.Summary) error {
	if output == outputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(patients)
	}

	now := time.Now()
	if mode == tui.OutputModeStyled {
		return tui.RenderStyled(w, patients, now, tui.TerminalWidth())
	}
	return tui.RenderPlain(w, patients, now)
}

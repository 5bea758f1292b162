package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rojournal-dev/rojournal/internal/auditlog"
	"github.com/rojournal-dev/rojournal/internal/config"
	"github.com/rojournal-dev/rojournal/internal/logger"
	"github.com/rojournal-dev/rojournal/internal/model"
	"github.com/rojournal-dev/rojournal/internal/period"
	"github.com/rojournal-dev/rojournal/internal/report"
	"github.com/rojournal-dev/rojournal/internal/schema"
	"github.com/rojournal-dev/rojournal/internal/store"
)

func newReportCommand() *cobra.Command {
	var (
		configPath   string
		journalType  string
		periodLabel  string
		dateFrom     string
		dateTo       string
		companyID    int64
		dataDir      string
		showWarnings bool
		strict       bool
		format       string
		userName     string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compute a sale or purchase journal for a period",
		Example: `  # Sale journal for January 2025 from a CSV snapshot
  rojournal report --type sale --period 2025-01 --data ./snapshot

  # Purchase journal over an explicit range against Postgres
  rojournal report --type purchase --from 2025-01-01 --to 2025-03-31`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if strict {
				cfg.Schema.Strict = true
			}
			if companyID != 0 {
				cfg.Company.ID = companyID
			}

			params, err := buildParams(journalType, periodLabel, dateFrom, dateTo, cfg.Company.ID, showWarnings, userName)
			if err != nil {
				return err
			}

			src, err := openSource(cfg, dataDir)
			if err != nil {
				return err
			}

			log := logger.WithComponent("report")
			reg, err := schema.NewDefault(cfg.Schema.Strict, logger.WithComponent("schema"))
			if err != nil {
				return err
			}

			var audit *auditlog.Recorder
			if cfg.Audit.Enabled {
				dir := cfg.Audit.Dir
				if dir == "" {
					dir = "."
				}
				audit = auditlog.NewRecorder(dir, logger.WithComponent("audit"))
			}

			svc := report.NewService(src, reg, cfg, log, audit)
			payload, err := svc.Run(cmd.Context(), params)
			if err != nil {
				return err
			}

			switch format {
			case "table":
				return renderTable(cmd.OutOrStdout(), reg, payload)
			case "csv":
				return renderCSV(cmd.OutOrStdout(), reg, payload)
			default:
				return fmt.Errorf("unknown format %q (want table or csv)", format)
			}
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to rojournal.yaml")
	cmd.Flags().StringVar(&journalType, "type", "", "journal type: sale or purchase (required)")
	_ = cmd.MarkFlagRequired("type")
	cmd.Flags().StringVar(&periodLabel, "period", "", "reporting month, e.g. 2025-01")
	cmd.Flags().StringVar(&dateFrom, "from", "", "period start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&dateTo, "to", "", "period end (YYYY-MM-DD)")
	cmd.Flags().Int64Var(&companyID, "company", 0, "company id (default from config)")
	cmd.Flags().StringVar(&dataDir, "data", "", "CSV snapshot directory (otherwise DATABASE_URL / config DSN)")
	cmd.Flags().BoolVar(&showWarnings, "show-warnings", false, "include the warnings column in the output")
	cmd.Flags().BoolVar(&strict, "strict", false, "abort on column schema tag collisions")
	cmd.Flags().StringVar(&format, "format", "table", "output format: table or csv")
	cmd.Flags().StringVar(&userName, "user", "", "requesting user name printed on the report")

	return cmd
}

func buildParams(journalType, periodLabel, dateFrom, dateTo string, companyID int64, showWarnings bool, user string) (report.Params, error) {
	jt := model.JournalType(journalType)
	if jt != model.JournalSale && jt != model.JournalPurchase {
		return report.Params{}, fmt.Errorf("invalid --type %q (want sale or purchase)", journalType)
	}

	p := report.Params{
		CompanyID:    companyID,
		JournalType:  jt,
		ShowWarnings: showWarnings,
		User:         user,
	}

	switch {
	case periodLabel != "":
		from, to, err := period.Parse(periodLabel)
		if err != nil {
			return report.Params{}, err
		}
		p.DateFrom, p.DateTo = from, to
	case dateFrom != "" && dateTo != "":
		from, err := period.ParseDate(dateFrom)
		if err != nil {
			return report.Params{}, err
		}
		to, err := period.ParseDate(dateTo)
		if err != nil {
			return report.Params{}, err
		}
		p.DateFrom, p.DateTo = from, to
	default:
		return report.Params{}, fmt.Errorf("either --period or both --from and --to are required")
	}

	return p, nil
}

func openSource(cfg *config.Config, dataDir string) (report.Source, error) {
	if dataDir != "" {
		src, err := store.Load(dataDir)
		if err != nil {
			return nil, fmt.Errorf("loading snapshot %s: %w", dataDir, err)
		}
		return src, nil
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = cfg.Database.DSN
	}
	if dsn == "" {
		return nil, fmt.Errorf("no data source: pass --data or set DATABASE_URL")
	}

	dbCfg := cfg.Database
	dbCfg.DSN = dsn
	db, err := store.Open(dbCfg)
	if err != nil {
		return nil, err
	}
	return store.NewPostgres(db), nil
}

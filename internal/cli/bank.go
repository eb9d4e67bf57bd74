package cli

import (
	"fmt"

	"actuator-quiz/internal/domain"
	"actuator-quiz/internal/infra/memory"
	pgstore "actuator-quiz/internal/infra/postgres"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewBankCmd groups question bank maintenance commands.
func NewBankCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bank",
		Short: "Validate or import question banks",
	}
	cmd.AddCommand(newBankValidateCmd(opts), newBankImportCmd(opts))
	return cmd
}

func newBankValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a YAML question bank against the game blueprint",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bank := domain.DefaultBank()
			if len(args) == 1 {
				var err error
				if bank, err = memory.ReadBankFile(args[0]); err != nil {
					return err
				}
			}
			if err := bank.Validate(); err != nil {
				return err
			}
			counts := make(map[domain.Slot]int)
			for _, q := range bank.Questions {
				counts[domain.Slot{Type: q.Type, Difficulty: q.Difficulty}]++
			}
			need := make(map[domain.Slot]int)
			for _, slot := range domain.DefaultBlueprint() {
				need[slot]++
			}
			for slot, n := range need {
				if counts[slot] < n {
					return domain.Configurationf("bank %q has %d %s %s questions, need %d",
						bank.ID, counts[slot], slot.Difficulty, slot.Type, n)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "bank %q ok: %d questions\n", bank.ID, len(bank.Questions))
			return nil
		},
	}
}

func newBankImportCmd(opts *rootOptions) *cobra.Command {
	var bankID string
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Store a YAML question bank (or the built-in one) in Postgres",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg, opts)
			if err != nil {
				return err
			}
			defer log.Sync()
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}

			bank := domain.DefaultBank()
			if len(args) == 1 {
				if bank, err = memory.ReadBankFile(args[0]); err != nil {
					return err
				}
			}
			if bankID != "" {
				bank.ID = bankID
			}

			if err := runMigrationsWithConfig(cmd.Context(), cfg, log); err != nil {
				return err
			}
			pool, err := pgxpool.Connect(cmd.Context(), cfg.Postgres.URL)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := pgstore.NewBankLoader(pool).SaveBank(cmd.Context(), bank); err != nil {
				return err
			}
			log.Info("question bank imported", zap.String("bank_id", bank.ID), zap.Int("questions", len(bank.Questions)))
			return nil
		},
	}
	cmd.Flags().StringVar(&bankID, "id", "", "bank id to store under (defaults to the file's id)")
	return cmd
}

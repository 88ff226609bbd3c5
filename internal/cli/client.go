package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mnemon/mnemon/internal/config"
	"github.com/mnemon/mnemon/internal/engine"
	"github.com/mnemon/mnemon/internal/store"
)

var (
	clientUserID int64
)

// openEngine is a helper that opens the database for CLI commands and
// wraps it in an engine with the configured parameters.
func openEngine() (*engine.Engine, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	dbPath := os.Getenv("MNEMON_DATABASE_PATH")
	if dbPath == "" {
		dbPath = cfg.Database.Path
	}
	if dbPath == "" {
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}

	eng := engine.New(db)
	eng.Params = cfg.Params()
	return eng, nil
}

// --- due command ---

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List topics due for review",
	RunE:  runDue,
}

func runDue(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer eng.DB.Close()

	ids, err := eng.DueTopics(clientUserID)
	if err != nil {
		return fmt.Errorf("due topics: %w", err)
	}

	if len(ids) == 0 {
		fmt.Println("Nothing due. Come back later.")
		return nil
	}

	fmt.Printf("%d topic(s) due for review:\n", len(ids))
	for _, id := range ids {
		fmt.Printf("  - topic %d\n", id)
	}
	return nil
}

// --- dashboard command ---

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the retention dashboard",
	RunE:  runDashboard,
}

func runDashboard(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer eng.DB.Close()

	dash, err := eng.Dashboard(clientUserID)
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}

	if len(dash.Topics) == 0 {
		fmt.Println("No topics tracked yet.")
		return nil
	}

	for _, t := range dash.Topics {
		fmt.Printf("%-30s  R=%.2f  S=%6.2f  [%s/%s]\n",
			t.TopicName, t.Retrievability, t.Stability, t.Status, t.Color)
	}
	fmt.Println()
	fmt.Printf("due today: %d   critical: %d   average retention: %.0f%%\n",
		dash.DueToday, dash.CriticalCount, dash.AverageRetention*100)
	return nil
}

func init() {
	dueCmd.Flags().Int64VarP(&clientUserID, "user", "u", 1, "User id")
	dashboardCmd.Flags().Int64VarP(&clientUserID, "user", "u", 1, "User id")
}

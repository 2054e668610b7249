package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"turbine_data_pipeline/config"
	"turbine_data_pipeline/database"
	"turbine_data_pipeline/generator"
	"turbine_data_pipeline/loader"
	"turbine_data_pipeline/logger"
	"turbine_data_pipeline/models"
	"turbine_data_pipeline/pipeline"
	"turbine_data_pipeline/writer"
)

func main() {
	if len(os.Args) < 2 {
		showHelp()
		return
	}

	command := os.Args[1]

	// Initialize logging only for commands that need it
	if needsLogging(command) {
		cfg := loadConfig(configArg(command))
		if err := logger.Init(cfg); err != nil {
			log.Fatalf("Failed to initialize logging: %v", err)
		}
		defer func() {
			if err := logger.Close(); err != nil {
				log.Fatalf("Failed to close logging: %v", err)
			}
		}()
		logger.LogCommand(os.Args[0], os.Args)
	}

	switch command {
	case "run":
		runCommand(configArg(command))
	case "connect":
		connectCommand()
	case "migrate":
		migrateCommand()
	case "migrate:create":
		if len(os.Args) < 3 {
			fmt.Println("Error: migration name required")
			fmt.Println("Usage: go run . migrate:create <migration_name>")
			return
		}
		createMigrationCommand(os.Args[2])
	case "migrate:status":
		migrationStatusCommand()
	case "db:info":
		dbInfoCommand()
	case "generate":
		if len(os.Args) < 3 {
			fmt.Println("Error: output directory required")
			fmt.Println("Usage: go run . generate <output_directory>")
			return
		}
		generateCommand(os.Args[2])
	case "help":
		showHelp()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		showHelp()
	}
}

// needsLogging determines which commands need logging
func needsLogging(command string) bool {
	loggingCommands := map[string]bool{
		"run":            true,
		"connect":        true,
		"migrate":        true,
		"migrate:create": true,
		"migrate:status": true,
	}
	return loggingCommands[command]
}

// configArg returns the optional config path argument for commands that take one
func configArg(command string) string {
	if command == "run" && len(os.Args) > 2 {
		return os.Args[2]
	}
	return ""
}

func showHelp() {
	fmt.Println("Wind Turbine Data Pipeline")
	fmt.Println("")
	fmt.Println("Usage: go run . <command> [arguments]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  run [config]          Run the full pipeline: load, clean, summarize, flag anomalies, save")
	fmt.Println("  connect               Test database connection")
	fmt.Println("  migrate               Run pending migrations")
	fmt.Println("  migrate:create <name> Create a new migration file")
	fmt.Println("  migrate:status        Show migration status")
	fmt.Println("  db:info               Show database and output table information")
	fmt.Println("  generate <directory>  Write synthetic daily turbine feeds for local testing")
	fmt.Println("  help                  Show this help message")
	fmt.Println("")
	fmt.Println("Configuration:")
	fmt.Println("  Edit config.yaml to set input files, output directory and database settings")
	fmt.Println("")
	fmt.Println("Input CSV Format:")
	fmt.Println("  Required columns: timestamp,turbine_id,power_output (extra columns are ignored)")
	fmt.Println("  Timestamp format: ISO8601 (e.g., 2025-09-05T12:30:45Z)")
}

func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	return cfg
}

func connectDatabase(cfg *config.Config) error {
	if err := cfg.ValidateDatabase(); err != nil {
		return err
	}
	if _, err := database.Connect(cfg); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	return nil
}

// runCommand executes the whole batch pipeline. Any fatal condition aborts
// before output files are written.
func runCommand(configPath string) {
	cfg := loadConfig(configPath)

	logger.Println("Loading raw CSV files ...")
	raw, err := loader.New().Load(cfg.Pipeline.InputFiles)
	if err != nil {
		logger.Fatalf("Load failed: %v\n", err)
	}
	logger.Printf("Loaded %d raw rows from %d file(s)\n", len(raw), len(cfg.Pipeline.InputFiles))

	logger.Println("Cleaning data ...")
	cleaned := pipeline.Clean(raw)
	logger.Printf("Cleaned dataset holds %d rows (%d dropped)\n", len(cleaned), len(raw)-len(cleaned))

	logger.Println("Computing daily statistics ...")
	stats := pipeline.DailyStats(cleaned)
	logger.Printf("Computed %d turbine-day summaries\n", len(stats))

	logger.Println("Detecting anomalies ...")
	anomalies := pipeline.DetectAnomalies(cleaned)
	logger.Printf("Flagged %d of %d readings as anomalous\n", countAnomalies(anomalies), len(anomalies))

	logger.Println("Saving outputs ...")
	if err := writer.SaveOutputs(cfg.Pipeline.OutputDir, cleaned, stats, anomalies); err != nil {
		logger.Fatalf("Save failed: %v\n", err)
	}

	if cfg.Export.Database.Enabled {
		logger.Println("Exporting outputs to database ...")
		if err := connectDatabase(cfg); err != nil {
			logger.Fatalf("Database export failed: %v\n", err)
		}
		runID, err := database.NewStore(database.GetDB()).SaveResults(cleaned, stats, anomalies)
		if err != nil {
			logger.Fatalf("Database export failed: %v\n", err)
		}
		logger.Printf("Exported run %s to database\n", runID)
	}

	logger.Printf("Pipeline finished - files written to %s\n", cfg.Pipeline.OutputDir)
}

func countAnomalies(records []models.AnomalyRecord) int {
	count := 0
	for _, r := range records {
		if r.IsAnomaly {
			count++
		}
	}
	return count
}

func connectCommand() {
	logger.Println("Testing database connection...")

	cfg := loadConfig("")
	if err := connectDatabase(cfg); err != nil {
		logger.Fatalf("Connection failed: %v\n", err)
	}

	logger.Printf("Successfully connected to %s database\n", cfg.Database.Driver)
}

func migrateCommand() {
	logger.Println("Running database migrations...")

	cfg := loadConfig("")
	if err := connectDatabase(cfg); err != nil {
		logger.Fatalf("Failed to connect to database: %v\n", err)
	}

	if cfg.Migration.AutoMigrate {
		logger.Println("Auto-migrating output tables...")
		if err := database.GetDB().AutoMigrate(models.AllModels()...); err != nil {
			logger.Fatalf("Auto-migration failed: %v\n", err)
		}
	}

	runner := database.NewMigrationRunner(database.GetDB(), cfg)
	if err := runner.RunMigrations(); err != nil {
		logger.Fatalf("Migration failed: %v\n", err)
	}
}

func createMigrationCommand(name string) {
	logger.Printf("Creating migration: %s\n", name)

	cfg := loadConfig("")
	runner := database.NewMigrationRunner(nil, cfg) // No DB connection needed to create files

	filePath, err := runner.CreateMigration(name)
	if err != nil {
		logger.Fatalf("Failed to create migration: %v\n", err)
	}

	logger.Printf("Migration created: %s\n", filePath)
}

func migrationStatusCommand() {
	logger.Println("Checking migration status...")

	cfg := loadConfig("")
	if err := connectDatabase(cfg); err != nil {
		logger.Fatalf("Failed to connect to database: %v\n", err)
	}

	runner := database.NewMigrationRunner(database.GetDB(), cfg)
	migrations, err := runner.GetMigrationStatus()
	if err != nil {
		logger.Fatalf("Failed to get migration status: %v\n", err)
	}

	if len(migrations) == 0 {
		logger.Println("No migrations found")
		return
	}

	logger.Printf("%-20s %-40s %s\n", "Version", "Name", "Status")
	logger.LogDivider()

	for _, migration := range migrations {
		status := "Pending"
		if migration.Applied {
			status = "Applied"
		}
		logger.Printf("%-20s %-40s %s\n", migration.Version, migration.Name, status)
	}
}

func dbInfoCommand() {
	fmt.Println("Database Information:")
	fmt.Println(strings.Repeat("=", 50))

	cfg := loadConfig("")
	if err := connectDatabase(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	info := database.GetDatabaseInfo(cfg)

	fmt.Printf("Database Type:     %v\n", info["driver"])
	fmt.Printf("Connected:         %v\n", info["connected"])

	switch cfg.Database.Driver {
	case "mysql", "postgres":
		fmt.Printf("Host:              %v\n", info["host"])
		fmt.Printf("Port:              %v\n", info["port"])
		fmt.Printf("Database:          %v\n", info["database"])
	case "sqlite":
		fmt.Printf("File Path:         %v\n", info["path"])
	}

	if info["connected"] == true {
		fmt.Println("\nConnection Pool:")
		fmt.Printf("  Max Connections: %v\n", info["max_open_connections"])
		fmt.Printf("  Open Connections:%v\n", info["open_connections"])

		db := database.GetDB()
		fmt.Println("\nOutput Tables:")
		for _, model := range models.AllModels() {
			var count int64
			db.Model(model).Count(&count)
			fmt.Printf("  %-18s %d rows\n", tableName(model), count)
		}
	} else {
		fmt.Println("\nConnection failed - unable to retrieve detailed information")
	}

	fmt.Println(strings.Repeat("=", 50))
}

func tableName(model interface{}) string {
	type tabler interface{ TableName() string }
	if t, ok := model.(tabler); ok {
		return t.TableName()
	}
	return fmt.Sprintf("%T", model)
}

func generateCommand(outputDir string) {
	fmt.Printf("Generating synthetic daily feeds in %s ...\n", outputDir)

	if err := generator.WriteDataGroups(outputDir, 3); err != nil {
		log.Fatalf("Generation failed: %v", err)
	}

	fmt.Println("Synthetic feeds generated.")
}

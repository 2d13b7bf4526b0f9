package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mapcheck/internal/rpc"
	"mapcheck/internal/tools"
	"mapcheck/internal/tools/builtin"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the validation tools over stdio",
	Long: `Serve speaks line-delimited JSON-RPC on stdin/stdout so an assistant
runtime can call the validation tools directly: validate_mapping,
list_mappings, check_schema, record_feedback and list_feedback. Logs go
to stderr. The server exits cleanly on EOF or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		src, closeSrc, err := openSource(cfg)
		if err != nil {
			return err
		}
		defer closeSrc()

		st := openStore(cfg)
		if st != nil {
			defer st.Close()
		}

		schemaDB, err := openSchemaDB(cfg)
		if err != nil {
			return err
		}
		if schemaDB != nil {
			defer schemaDB.Close()
		}

		registry := tools.NewRegistry(logger.Named("tools"))
		if err := builtin.Register(registry, builtin.Deps{
			Source:    src,
			Validator: newValidator(cfg),
			Store:     st,
			SchemaDB:  schemaDB,
			Log:       logger,
		}); err != nil {
			return fmt.Errorf("failed to register tools: %w", err)
		}

		server := rpc.NewServer(registry,
			rpc.ServerInfo{Name: "mapcheck", Version: version},
			logger.Named("rpc"))
		return server.Run(ctx, os.Stdin, os.Stdout)
	},
}

package main

import (
	"crypto/tls"

	"github.com/avohilabs/destiin"
	"github.com/avohilabs/destiin/listener"
	"github.com/avohilabs/destiin/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(c *cli) *cobra.Command {
	var address string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and the receipt upload page",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, closeApp, err := c.openApp()
			if err != nil {
				return err
			}
			defer closeApp()

			if err := destiin.WithFilesDir(app.FilesDir)(app); err != nil {
				return err
			}
			if len(c.config.APIKeys) == 0 {
				c.logger.Warn("no api keys configured, authenticated methods will reject every request")
			}

			var tlsConfig *tls.Config
			if c.config.TLSCert != "" && c.config.TLSKey != "" {
				tlsConfig, err = server.LoadTLSConfig(c.config.TLSCert, c.config.TLSKey)
				if err != nil {
					return err
				}
			}

			if address == "" {
				address = c.config.ListenAddress
			}
			l, err := listener.Listen(address, tlsConfig, c.logger)
			if err != nil {
				return err
			}

			s, err := server.New(app)
			if err != nil {
				l.Close()
				return err
			}
			c.logger.Info("listening", zap.String("address", address), zap.Bool("tls", tlsConfig != nil))
			return s.Serve(cmd.Context(), l)
		},
	}
	cmd.Flags().StringVar(&address, "listen", "", "address to listen on, overrides listen_address")
	return cmd
}

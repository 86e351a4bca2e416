package local
import (
	"fmt"
	"errors"
	"context"
	"net/http"

	"stegbox/util"
	"stegbox/config"
	"stegbox/network"
)

/*
 * package local wires the configured pieces together and runs
 * the upload server until the context is cancelled.
 */
func RunServer( ctx context.Context, conf *config.FullConfig ) error {

	// 1. read all the things we need
	logger, err := util.NewLogger( &conf.Logger )
	if err != nil {
		return fmt.Errorf("Failed to open log: %w", err)
	}
	defer logger.Close()

	codec, err := conf.StegConfig.Codec()
	if err != nil {
		return fmt.Errorf("Invalid steganography config: %w", err)
	}

	var db *util.DB
	if conf.DbFile != "" {
		db, err = util.ConnectDB( conf.DbFile, conf.DbPassword, conf.DbRowsLimit )
		if err != nil {
			return err
		}
		defer db.Close()
	}

	// 2. start the server
	srv, err := network.NewServer( conf.ServerConfig, conf.Version, codec, db, logger )
	if err != nil {
		return err
	}
	srv.SetEventHandler( &logEvents{ logger } )
	if err = srv.Start(); err != nil {
		return err
	}
	defer srv.Stop()

	// 3. optional status api
	if conf.ServerConfig.ApiAddress != "" && db != nil {
		api := NewApiServer( conf.ServerConfig.ApiAddress, db, conf.Version, srv, logger )
		go func() {
			logger.LogInfo( "Api listening", "address", conf.ServerConfig.ApiAddress )
			if err := api.ListenAndServe(); err != nil && !errors.Is( err, http.ErrServerClosed ) {
				logger.LogError( err )
			}
		}()
		defer api.Close()
	}

	<-ctx.Done()
	logger.LogInfo( "Shutting down" )
	return nil
}

package tls

import (
    "context"
    "crypto/tls"
    "fmt"

    "github.com/spiffe/go-spiffe/v2/spiffetls/tlsconfig"
    "github.com/spiffe/go-spiffe/v2/workloadapi"
    "go.uber.org/zap"
)

type TLSConfig struct {
    Enabled    bool   `envconfig:"TLS_ENABLED" default:"false"`
    SocketPath string `envconfig:"SPIRE_SOCKET_PATH" default:"unix:///run/spire/sockets/agent.sock"`
}

var x509Source *workloadapi.X509Source

// LoadBrokerTLSConfig builds the mTLS client config used when dialing
// the broker over amqps. Certificates come from the SPIRE workload API
// and rotate without a restart. Returns nil when TLS is disabled.
func LoadBrokerTLSConfig(cfg *TLSConfig, logger *zap.Logger) (*tls.Config, error) {
    if !cfg.Enabled {
        logger.Info("Broker TLS is disabled")
        return nil, nil
    }

    ctx := context.Background()

    source, err := workloadapi.NewX509Source(
        ctx,
        workloadapi.WithClientOptions(
            workloadapi.WithAddr(cfg.SocketPath),
        ),
    )
    if err != nil {
        return nil, fmt.Errorf("unable to create X509Source: %w", err)
    }

    x509Source = source

    tlsConfig := tlsconfig.MTLSClientConfig(source, source, tlsconfig.AuthorizeAny())
    tlsConfig.MinVersion = tls.VersionTLS12

    logger.Info("SPIRE TLS configuration loaded",
        zap.String("socket_path", cfg.SocketPath),
        zap.Bool("mtls_enabled", true))

    return tlsConfig, nil
}

func Cleanup() {
    if x509Source != nil {
        x509Source.Close()
    }
}

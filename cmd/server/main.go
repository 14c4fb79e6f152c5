package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/raywall/fast-crud-service/easyrepo"
	"github.com/raywall/fast-crud-service/models"
	"github.com/raywall/fast-crud-service/pkg/config"
	"github.com/raywall/fast-crud-service/pkg/logger"
	"github.com/raywall/fast-crud-service/pkg/observability"
	"github.com/raywall/fast-crud-service/pkg/resource"
	"github.com/raywall/fast-crud-service/pkg/transport"
	"github.com/rs/zerolog/log"
)

var (
	configDir string
	// Variáveis injetáveis para mocking
	serverStarter = transport.StartHTTPServer
	lambdaStarter = func(h *transport.LambdaHandler) { lambda.Start(h.Handle) }
)

func init() {
	configDir = os.Getenv("CONFIG_DIR")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, configDir); err != nil {
		log.Fatal().Err(err).Msg("FATAL")
	}
}

// run contém a lógica principal testável
func run(ctx context.Context, dir string) error {
	cfg, err := config.NewLoader(dir).Load()
	if err != nil {
		return fmt.Errorf("falha ao carregar configuração: %w", err)
	}

	base := logger.Configure(cfg.Logging)
	startup := logger.Component(base, "app:inicio")
	startup.Info().Msgf("Aplicacion: %s", cfg.Name)
	startup.Info().Msgf("DB server: %s", cfg.DB.Host)
	dbLog := logger.Component(base, "app:db")
	dbLog.Debug().Msg("Conectando con la base de datos...")

	provider, err := observability.SetupMetrics(cfg.Metrics, cfg.Name)
	if err != nil {
		return err
	}
	if closer, ok := provider.(io.Closer); ok {
		defer closer.Close()
	}

	handler, err := buildHandler(ctx, cfg, transport.Deps{
		Config:  cfg,
		Logger:  base,
		Metrics: provider,
	})
	if err != nil {
		return err
	}

	switch cfg.Runtime {
	case config.RuntimeLocal:
		return serverStarter(ctx, cfg, handler)
	case config.RuntimeLambda:
		lambdaStarter(transport.NewLambdaHandler(handler))
		return nil
	default:
		return fmt.Errorf("runtime desconhecido: %s", cfg.Runtime)
	}
}

// buildHandler cria as duas coleções e o roteador que as expõe.
func buildHandler(ctx context.Context, cfg *config.AppConfig, deps transport.Deps) (http.Handler, error) {
	policy, err := easyrepo.ParseIDPolicy(cfg.IDPolicy)
	if err != nil {
		return nil, err
	}

	usuarios := easyrepo.NewService[models.Usuario](
		easyrepo.NewMemoryRepository[models.Usuario](policy, models.SeedUsuarios()...))
	consolas := easyrepo.NewService[models.Consola](
		easyrepo.NewMemoryRepository[models.Consola](policy, models.SeedConsolas()...))

	deps.Resources = []transport.Mount{
		{
			Base: "/api/usuarios",
			Handler: resource.NewHandler[models.Usuario](usuarios, resource.Options{
				Name:            "usuarios",
				NotFound:        "El usuario %s no se encuentra!",
				NotFoundOnWrite: "El usuario no se encuentra",
				Metrics:         deps.Metrics,
			}),
		},
		{
			Base: "/api/consolas",
			Handler: resource.NewHandler[models.Consola](consolas, resource.Options{
				Name:            "consolas",
				NotFound:        "La consola %s no se encuentra!",
				NotFoundOnWrite: "La consola no se encuentra",
				Metrics:         deps.Metrics,
			}),
		},
	}

	return transport.NewRouter(ctx, deps), nil
}

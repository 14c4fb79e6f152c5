package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/raywall/fast-crud-service/envloader"
	"gopkg.in/yaml.v3"
)

const DefaultDir = "config"

// Loader monta a AppConfig em camadas:
// envDefault -> default.yaml -> <env>.yaml -> variáveis de ambiente.
type Loader struct {
	dir       string
	validator *ConfigValidator
}

// NewLoader cria um loader que procura os arquivos YAML em dir.
func NewLoader(dir string) *Loader {
	if dir == "" {
		dir = DefaultDir
	}
	return &Loader{
		dir:       dir,
		validator: NewValidator(),
	}
}

// Load lê, completa e valida a configuração. Arquivos ausentes não são erro.
func (l *Loader) Load() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := envloader.SetDefaults(cfg); err != nil {
		return nil, fmt.Errorf("falha ao aplicar valores padrão: %w", err)
	}

	if err := l.mergeFile(cfg, "default.yaml"); err != nil {
		return nil, err
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = cfg.Env
	}
	if env != "" && env != "default" {
		if err := l.mergeFile(cfg, env+".yaml"); err != nil {
			return nil, err
		}
	}

	if err := envloader.LoadEnv(cfg); err != nil {
		return nil, fmt.Errorf("falha ao aplicar variáveis de ambiente: %w", err)
	}

	if err := l.validator.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) mergeFile(cfg *AppConfig, name string) error {
	path := filepath.Join(l.dir, name)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("falha leitura config (%s): %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("falha ao parsear yaml (%s): %w", path, err)
	}
	return nil
}

// seed crea el rol administrador (permiso "*") y el usuario inicial con ADMIN_LOGIN /
// ADMIN_PASSWORD. Es idempotente: si el rol o el login ya existen, no los toca.
//
// Uso: STORAGE_DRIVER=postgres ADMIN_PASSWORD=... go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"os"

	"github.com/jhoicas/backoffice-api/internal/application/auth"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/usecase"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/catalog"
	"github.com/jhoicas/backoffice-api/internal/domain/query"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/stores"
	"github.com/jhoicas/backoffice-api/pkg/config"
	"github.com/jhoicas/backoffice-api/pkg/logger"
)

const adminRoleCode = "admin"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	if cfg.Storage.Driver == config.DriverMemory {
		log.Fatal().Msg("el driver memory no persiste: use STORAGE_DRIVER=postgres")
	}
	if cfg.Admin.Password == "" {
		log.Fatal().Msg("ADMIN_PASSWORD requerido")
	}

	ctx := context.Background()
	repos, err := stores.Open(ctx, *cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir persistencia")
	}
	defer repos.Close()

	resourceUC := usecase.NewResourceUseCase(repos.Resources, usecase.RecordRules{Languages: cfg.App.Languages})
	roleID, err := adminRole(ctx, resourceUC, cfg.App.Languages[0])
	if err != nil {
		log.Error().Err(err).Msg("rol administrador")
		os.Exit(1)
	}

	userUC := usecase.NewUserUseCase(repos.Users, repos.Resources)
	user, err := userUC.Create(ctx, dto.CreateUserRequest{
		Login:    cfg.Admin.Login,
		Password: cfg.Admin.Password,
		Name:     "Administrador",
		RoleID:   roleID,
	})
	switch {
	case errors.Is(err, domain.ErrLoginExists):
		log.Info().Str("login", cfg.Admin.Login).Msg("el usuario ya existe")
	case err != nil:
		log.Error().Err(err).Msg("crear usuario administrador")
		os.Exit(1)
	default:
		log.Info().Str("login", user.Login).Str("id", user.ID).Msg("usuario administrador creado")
	}
}

// adminRole devuelve el id del rol con code=admin, creándolo si no existe.
func adminRole(ctx context.Context, uc *usecase.ResourceUseCase, lang string) (string, error) {
	schema, _ := catalog.Lookup(catalog.Roles)
	q, err := query.NewParser(0).ParseArgs(schema, []query.Arg{
		{Key: "filters[code]", Value: adminRoleCode},
		{Key: "pagination[full]", Value: "true"},
	})
	if err != nil {
		return "", err
	}
	found, _, err := uc.List(ctx, q)
	if err != nil {
		return "", err
	}
	if len(found) > 0 {
		return found[0].ID, nil
	}
	rec, err := uc.Create(ctx, schema, map[string]any{
		catalog.FieldNames: map[string]string{lang: "Administrador"},
		"code":             adminRoleCode,
		"permissions":      []string{auth.PermissionAll},
	})
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

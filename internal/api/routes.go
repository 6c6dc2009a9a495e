package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/courier/internal/config"
	"github.com/JaimeStill/courier/pkg/openapi"
	"github.com/JaimeStill/courier/pkg/routes"
)

// SpecPath serves the generated OpenAPI document and bypasses authentication.
const SpecPath = "/openapi.json"

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) error {
	documentsHandler := domain.Documents.Handler()
	approvalsHandler := domain.Approvals.Handler()

	groups := []routes.Group{
		documentsHandler.Routes(),
		documentsHandler.BarcodeRoutes(),
		approvalsHandler.Routes(),
		approvalsHandler.NotificationRoutes(),
		domain.Audit.Handler().Routes(),
		domain.Users.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		newUploadHandler(runtime.Storage, runtime.Logger, cfg.API.MaxUploadSizeBytes()).routes(),
		newStorageHandler(runtime.Storage, runtime.Logger).routes(),
	}

	routes.Register(mux, groups...)

	spec, err := buildSpec(cfg, groups...)
	if err != nil {
		return err
	}
	mux.HandleFunc("GET "+SpecPath, openapi.ServeSpec(spec))

	return nil
}

func buildSpec(cfg *config.Config, groups ...routes.Group) ([]byte, error) {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	routes.Document(spec, groups...)

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		return nil, fmt.Errorf("marshal openapi spec: %w", err)
	}
	return data, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/item-validation/internal/application"
	"github.com/example/item-validation/internal/config"
	httptransport "github.com/example/item-validation/internal/http"
	"github.com/example/item-validation/internal/logging"
	"github.com/example/item-validation/internal/message"
	"github.com/example/item-validation/internal/persistence"
	"github.com/example/item-validation/internal/persistence/sqlite"
	"github.com/example/item-validation/internal/validation"
)

const serviceName = "itemservice"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           serviceName,
		Short:         "Item registration service with form validation",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newCodesCmd())
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.New(os.Stdout, cfg.SlogLevel(), serviceName)
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg, logger); err != nil {
		logger.Error("server encountered error", "error", err)
		return err
	}
	return nil
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	itemService := application.NewItemServiceWithLogger(newItemRepositoryAdapter(storage), nil, time.Now, logger)

	if cfg.SeedData {
		stored, err := itemService.Seed(ctx, seedItems()...)
		if err != nil {
			return fmt.Errorf("failed to seed items: %w", err)
		}
		if stored > 0 {
			logger.Info("seeded items", "count", stored)
		}
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Items:  httptransport.NewItemHandler(itemService, catalog, logger),
		Health: storage,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.Recoverer(logger),
			httptransport.Localize(catalog),
		},
	})

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("item service listening", "addr", server.Addr, "default_locale", cfg.DefaultLocale)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// loadCatalog builds the message catalog from the embedded bundles plus the
// optional override file.
func loadCatalog(cfg config.Config) (*message.Catalog, error) {
	var extra []message.Bundle
	if cfg.MessagesFile != "" {
		bundle, err := message.LoadBundleFile(cfg.MessagesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load messages file: %w", err)
		}
		extra = append(extra, bundle)
	}

	catalog, err := message.NewDefault(cfg.DefaultLocale, extra...)
	if err != nil {
		return nil, fmt.Errorf("failed to build message catalog: %w", err)
	}
	return catalog, nil
}

func seedItems() []application.ItemForm {
	return []application.ItemForm{
		application.NewItemForm("itemA", 10000, 10),
		application.NewItemForm("itemB", 20000, 20),
	}
}

func newCodesCmd() *cobra.Command {
	var (
		fieldType string
		locale    string
	)

	cmd := &cobra.Command{
		Use:   "codes <errorCode> <objectName> [field]",
		Short: "Print the message codes resolved for a failure",
		Example: `  itemservice codes required item
  itemservice codes typeMismatch item price --type int --locale ko`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var codes []string
			if len(args) == 3 {
				codes = validation.ResolveFieldCodes(args[0], args[1], args[2], fieldType)
			} else {
				codes = validation.ResolveObjectCodes(args[0], args[1])
			}

			if locale == "" {
				for _, code := range codes {
					fmt.Fprintln(cmd.OutOrStdout(), code)
				}
				return nil
			}

			catalog, err := message.NewDefault(locale)
			if err != nil {
				return err
			}
			for _, code := range codes {
				text, err := catalog.Lookup([]string{code}, nil, locale)
				if err != nil {
					text = "-"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", code, strings.TrimSpace(text))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fieldType, "type", "", "Field type name, e.g. int or string")
	cmd.Flags().StringVar(&locale, "locale", "", "Also print the catalog message of each code in this locale")
	return cmd
}

type itemRepositoryAdapter struct {
	repo persistence.ItemRepository
}

func newItemRepositoryAdapter(repo persistence.ItemRepository) *itemRepositoryAdapter {
	return &itemRepositoryAdapter{repo: repo}
}

func (a *itemRepositoryAdapter) FindAll(ctx context.Context) ([]application.Item, error) {
	models, err := a.repo.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]application.Item, 0, len(models))
	for _, model := range models {
		items = append(items, toApplicationItem(model))
	}
	return items, nil
}

func (a *itemRepositoryAdapter) FindByID(ctx context.Context, id int64) (application.Item, error) {
	stored, err := a.repo.GetItem(ctx, id)
	if err != nil {
		return application.Item{}, err
	}
	return toApplicationItem(stored), nil
}

func (a *itemRepositoryAdapter) Save(ctx context.Context, item application.Item) (application.Item, error) {
	stored, err := a.repo.CreateItem(ctx, toPersistenceItem(item))
	if err != nil {
		return application.Item{}, err
	}
	return toApplicationItem(stored), nil
}

func (a *itemRepositoryAdapter) Update(ctx context.Context, id int64, item application.Item) error {
	model := toPersistenceItem(item)
	model.ID = id
	return a.repo.UpdateItem(ctx, model)
}

func toApplicationItem(model persistence.Item) application.Item {
	return application.Item{
		ID:        model.ID,
		ItemName:  model.ItemName,
		Price:     model.Price,
		Quantity:  model.Quantity,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toPersistenceItem(item application.Item) persistence.Item {
	return persistence.Item{
		ID:        item.ID,
		ItemName:  item.ItemName,
		Price:     item.Price,
		Quantity:  item.Quantity,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

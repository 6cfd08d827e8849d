package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/agentworks/console/pkg/api"
	"github.com/agentworks/console/pkg/audit"
	"github.com/agentworks/console/pkg/auth"
	"github.com/agentworks/console/pkg/config"
	"github.com/agentworks/console/pkg/credentials"
	"github.com/agentworks/console/pkg/middleware"
	"github.com/agentworks/console/pkg/observability"
	"github.com/agentworks/console/pkg/sessions"
	"github.com/agentworks/console/pkg/workspace"
)

func main() {
	kubeconfig := flag.String("kubeconfig", "", "Path to a kubeconfig file (defaults to in-cluster config)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	log := observability.NewLogger(cfg.LogLevel, nil)

	restConfig, err := clusterConfig(*kubeconfig)
	if err != nil {
		log.WithError(err).Fatal("failed to build Kubernetes client config")
	}
	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		log.WithError(err).Fatal("failed to create Kubernetes clientset")
	}
	dynamicClient, err := dynamic.NewForConfig(restConfig)
	if err != nil {
		log.WithError(err).Fatal("failed to create dynamic client")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := credentials.NewMetrics(registry)

	cache := credentials.NewTokenCache(
		credentials.WithMaxEntries(cfg.Cache.MaxEntries),
		credentials.WithDefaultTTL(cfg.Cache.DefaultTTL),
		credentials.WithSafetyMargin(cfg.Cache.SafetyMargin),
		credentials.WithCacheMetrics(metrics),
	)
	issuer := credentials.NewKubeIssuer(clientset,
		credentials.WithTokenTTL(cfg.Issuer.TokenTTL),
		credentials.WithAudiences(cfg.Issuer.Audiences...),
	)
	caller := credentials.NewScopedCaller(cache, issuer,
		credentials.WithCallerMetrics(metrics),
		credentials.WithLogger(log.WithField("component", "credentials")),
	)

	store := workspace.NewKubeStore(dynamicClient)
	lister := sessions.NewKubeLister(restConfig)
	sink := audit.NewLogrusSink(log)

	authenticators, err := buildAuthenticators(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to configure authentication")
	}

	server := api.NewServer(store, caller, cache, lister, sink, log,
		api.WithAdminGroups(cfg.Auth.AdminGroups...),
	)

	var handler http.Handler = server
	if cfg.RateLimit.Enabled {
		handler = buildRateLimiter(cfg, log).Handler(handler)
	}
	handler = auth.NewMiddleware(authenticators...).Handler(handler)
	handler = observability.NewRecoveryMiddleware(log).Handler(handler)

	root := http.NewServeMux()
	root.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	root.Handle("/", handler)

	// Expired entries are otherwise only purged when touched; the scheduler
	// keeps the cache from holding dead tokens between requests.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(fmt.Sprintf("@every %s", cfg.Cache.PruneInterval), func() {
		if removed := cache.PruneExpired(); removed > 0 {
			log.WithField("removed", removed).Debug("pruned expired tokens")
		}
	}); err != nil {
		log.WithError(err).Fatal("failed to schedule token pruning")
	}
	scheduler.Start()

	httpServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      root,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.WithField("addr", httpServer.Addr).Info("starting workspace console server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	shutdown := observability.NewShutdownManager(log, httpServer, cfg.Server.ShutdownTimeout)
	shutdown.RegisterShutdownFunc(func(context.Context) error {
		scheduler.Stop()
		return nil
	})
	shutdown.RegisterShutdownFunc(func(context.Context) error {
		cache.Clear()
		return nil
	})
	if err := shutdown.WaitForShutdown(); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

// clusterConfig loads the in-cluster config, falling back to a kubeconfig
// for local development.
func clusterConfig(kubeconfigPath string) (*rest.Config, error) {
	if kubeconfigPath == "" {
		if cfg, err := rest.InClusterConfig(); err == nil {
			return cfg, nil
		}
	}

	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	if kubeconfigPath != "" {
		loadingRules.ExplicitPath = kubeconfigPath
	}
	return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		loadingRules, &clientcmd.ConfigOverrides{},
	).ClientConfig()
}

// buildRateLimiter assembles request throttling: Redis-backed when an
// address is configured so replicas share budgets, in-memory otherwise.
func buildRateLimiter(cfg *config.Config, log *logrus.Logger) *middleware.RateLimitMiddleware {
	if cfg.RateLimit.RedisAddr == "" {
		return middleware.NewRateLimitMiddleware(nil, nil)
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RateLimit.RedisAddr})
	log.WithField("addr", cfg.RateLimit.RedisAddr).Info("distributed rate limiting enabled")
	return middleware.NewRateLimitMiddleware(
		middleware.NewDistributedRateLimiter(client, middleware.PerUserRateLimitConfig(), "ratelimit:user"),
		middleware.NewDistributedRateLimiter(client, middleware.DefaultRateLimitConfig(), "ratelimit:anon"),
	)
}

// buildAuthenticators assembles the session authenticators the deployment
// has configured.
func buildAuthenticators(cfg *config.Config, log *logrus.Logger) ([]auth.Authenticator, error) {
	var authenticators []auth.Authenticator

	if cfg.Auth.OIDCIssuerURL != "" {
		oidcAuth, err := auth.NewOIDCAuthenticator(context.Background(), cfg.Auth.OIDCIssuerURL, cfg.Auth.OIDCClientID)
		if err != nil {
			return nil, err
		}
		authenticators = append(authenticators, oidcAuth)
		log.WithField("issuer", cfg.Auth.OIDCIssuerURL).Info("OIDC authentication enabled")
	}
	if cfg.Auth.SessionSecret != "" {
		authenticators = append(authenticators, auth.NewBuiltinAuthenticator([]byte(cfg.Auth.SessionSecret)))
		log.Info("built-in session authentication enabled")
	}
	if len(authenticators) == 0 {
		log.Warn("no authenticators configured, all requests are anonymous")
	}
	return authenticators, nil
}

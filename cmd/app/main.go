package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/tsel-ticketmaster/tm-ticket/config"
	adminapp_attendee "github.com/tsel-ticketmaster/tm-ticket/internal/module/adminapp/attendee"
	adminapp_company "github.com/tsel-ticketmaster/tm-ticket/internal/module/adminapp/company"
	adminapp_event "github.com/tsel-ticketmaster/tm-ticket/internal/module/adminapp/event"
	"github.com/tsel-ticketmaster/tm-ticket/internal/module/adminapp/notification"
	gateapp_ticket "github.com/tsel-ticketmaster/tm-ticket/internal/module/gateapp/ticket"
	"github.com/tsel-ticketmaster/tm-ticket/internal/pkg/jwt"
	internalMiddleare "github.com/tsel-ticketmaster/tm-ticket/internal/pkg/middleware"
	"github.com/tsel-ticketmaster/tm-ticket/internal/pkg/session"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/applogger"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/cache"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/gctasks"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/kafka"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/middleware"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/monitoring"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/postgresql"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/pubsub"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/redis"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/server"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/storage"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/ticketpdf"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/validator"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

var c *config.Config

func init() {
	c = config.Get()
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := applogger.GetLogrus()

	mon := monitoring.NewOpenTelemetry(
		c.Application.Name,
		c.Application.Environment,
		c.GCP.ProjectID,
	)

	mon.Start(ctx)

	validate := validator.Get()

	hc := http.DefaultClient

	jsonWebToken := jwt.NewJSONWebToken(c.JWT.PrivateKey, c.JWT.PublicKey)

	psqldb := postgresql.GetDatabase()
	if err := psqldb.Ping(); err != nil {
		logger.WithContext(ctx).WithError(err).Error()
	}

	publisher := pubsub.PublisherFromConfluentKafkaProducer(logger, kafka.NewProducer())

	rc := redis.GetClient()
	if err := rc.Ping(context.Background()).Err(); err != nil {
		logger.WithContext(ctx).WithError(err).Error()
	}

	cloudTask := gctasks.NewGCTasks(logger, c.GCP.ProjectID, c.GCP.ServiceAccount)

	sessionStore := session.NewRedisSessionStore(logger, rc)

	adminSessionMiddleware := internalMiddleare.NewAdminSessionMiddleware(jsonWebToken, sessionStore)
	gateSessionMiddleware := internalMiddleare.NewGateSessionMiddleware(jsonWebToken, sessionStore)

	viewCache := cache.NewRedisManager(logger, rc, c.Cache.TTL)
	blobStorage := storage.NewFileStorage(logger, c.Storage.BasePath, c.Storage.BaseURL)
	renderer := ticketpdf.NewRenderer()

	router := mux.NewRouter()
	router.Use(
		otelmux.Middleware(c.Application.Name),
		middleware.HTTPResponseTraceInjection,
		middleware.NewHTTPRequestLogger(logger, c.Application.Debug, http.StatusInternalServerError).Middleware,
	)

	notificationRepo := notification.NewNotificationRepository(c.Notification.BaseURL, c.Notification.APIKey, logger, hc)

	// admin's app
	adminappCompanyRepo := adminapp_company.NewCompanyRepository(logger, psqldb)
	adminappEventRepo := adminapp_event.NewEventRepository(logger, psqldb)
	adminappTableRepo := adminapp_event.NewTableRepository(logger, psqldb)
	adminappAttendeeRepo := adminapp_attendee.NewAttendeeRepository(logger, psqldb)
	adminappTicketRepo := adminapp_attendee.NewTicketRepository(logger, psqldb)
	adminappEventUseCase := adminapp_event.NewEventUseCase(adminapp_event.EventUseCaseProperty{
		Logger:            logger,
		Timeout:           c.Application.Timeout,
		EventRepository:   adminappEventRepo,
		TableRepository:   adminappTableRepo,
		CompanyRepository: adminappCompanyRepo,
		ViewCache:         viewCache,
	})
	adminapp_event.InitHTTPHandler(router, adminSessionMiddleware, validate, adminappEventUseCase)
	adminappAttendeeUseCase := adminapp_attendee.NewAttendeeUseCase(adminapp_attendee.AttendeeUseCaseProperty{
		Logger:                 logger,
		Timeout:                c.Application.Timeout,
		BaseURL:                c.Application.BaseURL,
		DefaultLogoPath:        c.Storage.DefaultLogoPath,
		AttendeeRepository:     adminappAttendeeRepo,
		TicketRepository:       adminappTicketRepo,
		EventRepository:        adminappEventRepo,
		TableRepository:        adminappTableRepo,
		CompanyRepository:      adminappCompanyRepo,
		NotificationRepository: notificationRepo,
		BlobStorage:            blobStorage,
		Renderer:               renderer,
		Publisher:              publisher,
		Tasks:                  cloudTask,
	})
	adminapp_attendee.InitHTTPHandler(router, adminSessionMiddleware, validate, adminappAttendeeUseCase)

	// gate's app
	gateappTicketRepo := gateapp_ticket.NewTicketRepository(logger, psqldb)
	gateappTicketUseCase := gateapp_ticket.NewTicketUseCase(gateapp_ticket.TicketUseCaseProperty{
		Logger:                 logger,
		Timeout:                c.Application.Timeout,
		TicketRepository:       gateappTicketRepo,
		NotificationRepository: notificationRepo,
		Publisher:              publisher,
	})
	gateapp_ticket.InitHTTPHandler(router, gateSessionMiddleware, validate, gateappTicketUseCase)

	handler := middleware.SetChain(
		router,
		cors.New(cors.Options{
			AllowedOrigins:   c.CORS.AllowedOrigins,
			AllowedMethods:   c.CORS.AllowedMethods,
			AllowedHeaders:   c.CORS.AllowedHeaders,
			ExposedHeaders:   c.CORS.ExposedHeaders,
			MaxAge:           c.CORS.MaxAge,
			AllowCredentials: c.CORS.AllowCredentials,
		}).Handler,
	)

	srv := &server.Server{
		Server: http.Server{
			Addr:    fmt.Sprintf(":%d", c.Application.Port),
			Handler: handler,
		},
		Logger: logger,
	}

	go func() {
		srv.ListenAndServe()
	}()

	sigterm := make(chan os.Signal, 1)
	signal.Notify(sigterm, syscall.SIGINT, syscall.SIGTERM)
	<-sigterm

	srv.Shutdown(ctx)
	publisher.Close()
	cloudTask.Close()
	psqldb.Close()
	rc.Close()
	mon.Stop(ctx)
}

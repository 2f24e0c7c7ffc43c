// Package workshop wires the job card, bill number, invoice and master data
// services over either PostgreSQL or in-process storage.
package workshop

import (
	"io/fs"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/garage/modules/workshop/domain/aggregates/jobcard"
	"github.com/iota-uz/garage/modules/workshop/domain/entities/catalog"
	"github.com/iota-uz/garage/modules/workshop/infrastructure/persistence"
	"github.com/iota-uz/garage/modules/workshop/services"
	"github.com/iota-uz/garage/pkg/configuration"
	"github.com/iota-uz/garage/pkg/eventbus"
	"github.com/iota-uz/garage/pkg/sequence"
)

type ModuleOptions struct {
	BillNumber configuration.BillNumberOptions
	Invoice    configuration.InvoiceOptions
	Logger     *logrus.Entry
	EventBus   eventbus.EventBus
}

// Module holds the services of the workshop. Services backed by PostgreSQL
// expect the pgx pool in the context (composables.WithPool).
type Module struct {
	JobCards    *services.JobCardService
	BillNumbers *services.BillNumberService
	Invoices    *services.InvoiceService
	MasterData  *services.MasterDataService
	EventBus    eventbus.EventBus
}

func MigrationFiles() fs.FS {
	return persistence.MigrationFiles()
}

func NewPostgresModule(opts ModuleOptions) (*Module, error) {
	table := pgx.Identifier(strings.Split(opts.BillNumber.Table, "."))
	store, err := sequence.NewPostgresStore(table, opts.BillNumber.Column, opts.BillNumber.LockTimeout)
	if err != nil {
		return nil, err
	}
	return newModule(opts, store, persistence.NewJobCardRepository(), persistence.NewCatalogRepository()), nil
}

// NewMemoryModule keeps everything in process. The store is shared by the
// assigner and the job card repository.
func NewMemoryModule(opts ModuleOptions) *Module {
	var storeOpts []sequence.MemoryStoreOption
	if opts.BillNumber.LockTimeout > 0 {
		storeOpts = append(storeOpts, sequence.WithMemoryLockTimeout(opts.BillNumber.LockTimeout))
	}
	store := sequence.NewMemoryStore(storeOpts...)
	return newModule(opts, store, persistence.NewInmemJobCardRepository(store), persistence.NewInmemCatalogRepository())
}

func newModule(
	opts ModuleOptions,
	store services.BillNumberStore,
	jobcards jobcard.Repository,
	catalogRepo catalog.Repository,
) *Module {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	bus := opts.EventBus
	if bus == nil {
		bus = eventbus.NewEventPublisher(logger.WithField("component", "eventbus"))
	}
	subscribeLifecycleLog(bus, logger.WithField("component", "jobcard.events"))

	assigner := sequence.NewAssigner(store, sequence.WithLogger(logger.WithField("component", "sequence")))
	return &Module{
		JobCards: services.NewJobCardService(
			jobcards, store, assigner, bus,
			services.WithBillPrefix(opts.BillNumber.Prefix),
			services.WithLogger(logger.WithField("component", "jobcard")),
		),
		BillNumbers: services.NewBillNumberService(store, assigner, opts.BillNumber.Prefix),
		Invoices:    services.NewInvoiceService(jobcards, opts.Invoice.Currency, opts.Invoice.ShopName),
		MasterData:  services.NewMasterDataService(catalogRepo),
		EventBus:    bus,
	}
}

// subscribeLifecycleLog records every job card event at info level.
func subscribeLifecycleLog(bus eventbus.EventBus, logger *logrus.Entry) {
	entry := func(name string, card jobcard.JobCard) *logrus.Entry {
		return logger.WithFields(logrus.Fields{
			"event":       name,
			"id":          card.ID(),
			"bill_number": card.BillNumber(),
		})
	}
	bus.Subscribe(func(e jobcard.CreatedEvent) { entry(e.Name(), e.Result).Info("jobcard event") })
	bus.Subscribe(func(e jobcard.UpdatedEvent) { entry(e.Name(), e.Result).Info("jobcard event") })
	bus.Subscribe(func(e jobcard.DeliveredEvent) {
		entry(e.Name(), e.Result).WithField("undone", e.Undone).Info("jobcard event")
	})
	bus.Subscribe(func(e jobcard.DeletedEvent) { entry(e.Name(), e.Result).Info("jobcard event") })
}

package store_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/folio-labs/bulk-operations/internal/config"
	st "github.com/folio-labs/bulk-operations/internal/store"
	"github.com/folio-labs/bulk-operations/internal/store/model"
)

func TestStore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Store Suite")
}

var _ = Describe("Store", Ordered, func() {
	var (
		store  st.Store
		gormDB *gorm.DB
	)

	BeforeAll(func() {
		db, err := st.InitDB(config.NewTestConfig())
		Expect(err).To(BeNil())
		gormDB = db

		store = st.NewStore(db)
		Expect(store).ToNot(BeNil())
		Expect(store.InitialMigration()).To(BeNil())
	})

	AfterAll(func() {
		store.Close()
	})

	AfterEach(func() {
		gormDB.Exec("DELETE FROM operation_errors")
		gormDB.Exec("DELETE FROM executions")
		gormDB.Exec("DELETE FROM data_processings")
		gormDB.Exec("DELETE FROM bulk_operations")
	})

	Context("bulk operation", func() {
		It("creates and reads back an operation", func() {
			id := uuid.New()
			_, err := store.BulkOperation().Create(context.TODO(), &model.BulkOperation{
				ID:         id,
				EntityType: "USER",
				Status:     model.StatusNew,
			})
			Expect(err).To(BeNil())

			op, err := store.BulkOperation().Get(context.TODO(), id)
			Expect(err).To(BeNil())
			Expect(op.Status).To(Equal(model.StatusNew))
		})

		It("returns not found for an unknown id", func() {
			_, err := store.BulkOperation().Get(context.TODO(), uuid.New())
			Expect(err).To(MatchError(st.ErrRecordNotFound))
		})

		It("save upserts the whole row", func() {
			id := uuid.New()
			op := &model.BulkOperation{ID: id, EntityType: "USER", Status: model.StatusNew}

			Expect(store.BulkOperation().Save(context.TODO(), op)).To(BeNil())

			op.Status = model.StatusRetrievingRecords
			op.TotalNumOfRecords = 7
			Expect(store.BulkOperation().Save(context.TODO(), op)).To(BeNil())

			stored, err := store.BulkOperation().Get(context.TODO(), id)
			Expect(err).To(BeNil())
			Expect(stored.Status).To(Equal(model.StatusRetrievingRecords))
			Expect(stored.TotalNumOfRecords).To(Equal(7))
		})

		It("increments the committed error counter in place", func() {
			id := uuid.New()
			_, err := store.BulkOperation().Create(context.TODO(), &model.BulkOperation{
				ID:         id,
				EntityType: "USER",
				Status:     model.StatusApplyChanges,
			})
			Expect(err).To(BeNil())

			Expect(store.BulkOperation().IncrementCommittedErrors(context.TODO(), id)).To(BeNil())
			Expect(store.BulkOperation().IncrementCommittedErrors(context.TODO(), id)).To(BeNil())

			op, err := store.BulkOperation().Get(context.TODO(), id)
			Expect(err).To(BeNil())
			Expect(op.CommittedNumOfErrors).To(Equal(2))
		})
	})

	Context("data processing", func() {
		It("saves, reads and deletes a progress row", func() {
			opID := uuid.New()
			dp := &model.DataProcessing{
				BulkOperationID:   opID,
				Status:            model.ProcessingActive,
				TotalNumOfRecords: 10,
			}
			Expect(store.DataProcessing().Save(context.TODO(), dp)).To(BeNil())

			dp.ProcessedNumOfRecords = 5
			Expect(store.DataProcessing().Save(context.TODO(), dp)).To(BeNil())

			stored, err := store.DataProcessing().Get(context.TODO(), opID)
			Expect(err).To(BeNil())
			Expect(stored.ProcessedNumOfRecords).To(Equal(5))

			Expect(store.DataProcessing().Delete(context.TODO(), opID)).To(BeNil())
			_, err = store.DataProcessing().Get(context.TODO(), opID)
			Expect(err).To(MatchError(st.ErrRecordNotFound))
		})
	})

	Context("execution", func() {
		It("saves and reads back a progress row", func() {
			opID := uuid.New()
			e := &model.Execution{BulkOperationID: opID, Status: model.ProcessingActive}
			Expect(store.Execution().Save(context.TODO(), e)).To(BeNil())

			e.Status = model.ProcessingCompleted
			e.ProcessedRecords = 42
			Expect(store.Execution().Save(context.TODO(), e)).To(BeNil())

			stored, err := store.Execution().Get(context.TODO(), opID)
			Expect(err).To(BeNil())
			Expect(stored.Status).To(Equal(model.ProcessingCompleted))
			Expect(stored.ProcessedRecords).To(Equal(42))
		})
	})

	Context("operation errors", func() {
		It("lists errors in insertion order", func() {
			opID := uuid.New()
			for _, identifier := range []string{"a", "b", "c"} {
				err := store.OperationError().Create(context.TODO(), &model.OperationError{
					BulkOperationID: opID,
					Identifier:      identifier,
					Message:         "boom",
				})
				Expect(err).To(BeNil())
			}

			errs, err := store.OperationError().List(context.TODO(), opID)
			Expect(err).To(BeNil())
			Expect(errs).To(HaveLen(3))
			Expect(errs[0].Identifier).To(Equal("a"))
			Expect(errs[2].Identifier).To(Equal("c"))
		})

		It("deletes errors per operation", func() {
			opID := uuid.New()
			otherID := uuid.New()
			Expect(store.OperationError().Create(context.TODO(), &model.OperationError{BulkOperationID: opID, Identifier: "a", Message: "boom"})).To(BeNil())
			Expect(store.OperationError().Create(context.TODO(), &model.OperationError{BulkOperationID: otherID, Identifier: "b", Message: "boom"})).To(BeNil())

			Expect(store.OperationError().DeleteByOperationID(context.TODO(), opID)).To(BeNil())

			errs, err := store.OperationError().List(context.TODO(), opID)
			Expect(err).To(BeNil())
			Expect(errs).To(BeEmpty())

			errs, err = store.OperationError().List(context.TODO(), otherID)
			Expect(err).To(BeNil())
			Expect(errs).To(HaveLen(1))
		})
	})

	Context("transaction", func() {
		It("commits writes made inside the transaction context", func() {
			ctx, err := store.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			id := uuid.New()
			_, err = store.BulkOperation().Create(ctx, &model.BulkOperation{
				ID:         id,
				EntityType: "USER",
				Status:     model.StatusNew,
			})
			Expect(err).To(BeNil())

			_, err = st.Commit(ctx)
			Expect(err).To(BeNil())

			_, err = store.BulkOperation().Get(context.TODO(), id)
			Expect(err).To(BeNil())
		})

		It("discards writes on rollback", func() {
			ctx, err := store.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			id := uuid.New()
			_, err = store.BulkOperation().Create(ctx, &model.BulkOperation{
				ID:         id,
				EntityType: "USER",
				Status:     model.StatusNew,
			})
			Expect(err).To(BeNil())

			_, err = st.Rollback(ctx)
			Expect(err).To(BeNil())

			_, err = store.BulkOperation().Get(context.TODO(), id)
			Expect(err).To(MatchError(st.ErrRecordNotFound))
		})
	})
})

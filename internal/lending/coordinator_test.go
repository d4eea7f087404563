package lending

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"libraryapi/internal/borrower"
	"libraryapi/internal/catalog"
	"libraryapi/internal/inventory"
	"libraryapi/internal/loan"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testKit struct {
	coord        *Coordinator
	copies       *inventory.MemoryRepo
	loans        *loan.MemoryLedger
	inventory    *inventory.Service
	borrowers    *borrower.Service
	borrowerRepo *borrower.MemoryRepo
}

func newTestKit() *testKit {
	cat := catalog.NewMemoryRepo()
	copies := inventory.NewMemoryRepo(cat)
	loans := loan.NewMemoryLedger()
	borrowerRepo := borrower.NewMemoryRepo()

	runner := PassthroughTxRunner{Stores: Stores{Copies: copies, Loans: loans}}
	return &testKit{
		coord:        NewCoordinator(borrowerRepo, copies, runner),
		copies:       copies,
		loans:        loans,
		inventory:    inventory.NewService(copies, catalog.NewService(cat)),
		borrowers:    borrower.NewService(borrowerRepo),
		borrowerRepo: borrowerRepo,
	}
}

func (k *testKit) registerCopy(t *testing.T) inventory.CopyWithCatalog {
	t.Helper()
	cw, err := k.inventory.RegisterCopy(context.Background(), "978-0-13-468599-1", "The Go Programming Language", "Alan A. A. Donovan")
	require.NoError(t, err)
	return cw
}

func (k *testKit) registerBorrower(t *testing.T, name, email string) borrower.Borrower {
	t.Helper()
	b, err := k.borrowers.Register(context.Background(), name, email)
	require.NoError(t, err)
	return b
}

func TestCoordinator_Borrow(t *testing.T) {
	ctx := context.Background()

	t.Run("success returns loan and copy with catalog", func(t *testing.T) {
		kit := newTestKit()
		cw := kit.registerCopy(t)
		b := kit.registerBorrower(t, "Alice Chen", "alice@example.com")

		result, err := kit.coord.Borrow(ctx, cw.ID, b.ID)
		require.NoError(t, err)
		assert.Equal(t, cw.ID, result.Loan.CopyID)
		assert.Equal(t, b.ID, result.Loan.BorrowerID)
		assert.True(t, result.Loan.Open())
		assert.True(t, result.Copy.Borrowed)
		assert.Equal(t, "The Go Programming Language", result.Copy.Title)
	})

	t.Run("unknown borrower", func(t *testing.T) {
		kit := newTestKit()
		cw := kit.registerCopy(t)

		_, err := kit.coord.Borrow(ctx, cw.ID, "missing")
		assert.ErrorIs(t, err, ErrBorrowerNotFound)
	})

	t.Run("unknown copy", func(t *testing.T) {
		kit := newTestKit()
		b := kit.registerBorrower(t, "Alice Chen", "alice@example.com")

		_, err := kit.coord.Borrow(ctx, "missing", b.ID)
		assert.ErrorIs(t, err, ErrBookNotFound)
	})

	t.Run("already borrowed", func(t *testing.T) {
		kit := newTestKit()
		cw := kit.registerCopy(t)
		alice := kit.registerBorrower(t, "Alice Chen", "alice@example.com")
		bob := kit.registerBorrower(t, "Bob Okafor", "bob@example.com")

		_, err := kit.coord.Borrow(ctx, cw.ID, alice.ID)
		require.NoError(t, err)

		_, err = kit.coord.Borrow(ctx, cw.ID, bob.ID)
		assert.ErrorIs(t, err, ErrBookAlreadyBorrowed)
	})
}

func TestCoordinator_Borrow_AtMostOneWinner(t *testing.T) {
	ctx := context.Background()
	kit := newTestKit()
	cw := kit.registerCopy(t)

	const n = 32
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		b, err := kit.borrowers.Register(ctx, "Borrower", borrowerEmail(i))
		require.NoError(t, err)
		ids[i] = b.ID
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = kit.coord.Borrow(ctx, cw.ID, ids[i])
		}(i)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		default:
			require.ErrorIs(t, err, ErrBookAlreadyBorrowed)
			conflicts++
		}
	}
	assert.Equal(t, 1, wins, "at most one concurrent borrow may succeed")
	assert.Equal(t, n-1, conflicts)

	// The copy is out and exactly one open loan exists.
	c, err := kit.copies.GetCopy(ctx, cw.ID)
	require.NoError(t, err)
	assert.True(t, c.Borrowed)
	_, err = kit.loans.FindOpenLoan(ctx, cw.ID)
	assert.NoError(t, err)
}

func TestCoordinator_Return(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip frees the copy and closes the loan", func(t *testing.T) {
		kit := newTestKit()
		cw := kit.registerCopy(t)
		alice := kit.registerBorrower(t, "Alice Chen", "alice@example.com")
		bob := kit.registerBorrower(t, "Bob Okafor", "bob@example.com")

		borrowed, err := kit.coord.Borrow(ctx, cw.ID, alice.ID)
		require.NoError(t, err)

		returned, err := kit.coord.Return(ctx, cw.ID, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, borrowed.Loan.ID, returned.Loan.ID)
		require.NotNil(t, returned.Loan.ReturnedAt)
		assert.False(t, returned.Copy.Borrowed)

		// A different borrower can now take the copy.
		_, err = kit.coord.Borrow(ctx, cw.ID, bob.ID)
		assert.NoError(t, err)
	})

	t.Run("wrong borrower leaves the loan open and the copy out", func(t *testing.T) {
		kit := newTestKit()
		cw := kit.registerCopy(t)
		alice := kit.registerBorrower(t, "Alice Chen", "alice@example.com")
		bob := kit.registerBorrower(t, "Bob Okafor", "bob@example.com")

		_, err := kit.coord.Borrow(ctx, cw.ID, alice.ID)
		require.NoError(t, err)

		_, err = kit.coord.Return(ctx, cw.ID, bob.ID)
		assert.ErrorIs(t, err, ErrWrongBorrower)

		c, err := kit.copies.GetCopy(ctx, cw.ID)
		require.NoError(t, err)
		assert.True(t, c.Borrowed)
		open, err := kit.loans.FindOpenLoan(ctx, cw.ID)
		require.NoError(t, err)
		assert.Equal(t, alice.ID, open.BorrowerID)
	})

	t.Run("no active loan mutates nothing", func(t *testing.T) {
		kit := newTestKit()
		cw := kit.registerCopy(t)
		alice := kit.registerBorrower(t, "Alice Chen", "alice@example.com")

		_, err := kit.coord.Return(ctx, cw.ID, alice.ID)
		assert.ErrorIs(t, err, ErrActiveLoanNotFound)

		c, err := kit.copies.GetCopy(ctx, cw.ID)
		require.NoError(t, err)
		assert.False(t, c.Borrowed)
		assert.Zero(t, c.Version)
	})

	t.Run("double return fails with no active loan", func(t *testing.T) {
		kit := newTestKit()
		cw := kit.registerCopy(t)
		alice := kit.registerBorrower(t, "Alice Chen", "alice@example.com")

		_, err := kit.coord.Borrow(ctx, cw.ID, alice.ID)
		require.NoError(t, err)
		_, err = kit.coord.Return(ctx, cw.ID, alice.ID)
		require.NoError(t, err)

		_, err = kit.coord.Return(ctx, cw.ID, alice.ID)
		assert.ErrorIs(t, err, ErrActiveLoanNotFound)
	})

	t.Run("unknown borrower", func(t *testing.T) {
		kit := newTestKit()
		cw := kit.registerCopy(t)

		_, err := kit.coord.Return(ctx, cw.ID, "missing")
		assert.ErrorIs(t, err, ErrBorrowerNotFound)
	})

	t.Run("unknown copy", func(t *testing.T) {
		kit := newTestKit()
		alice := kit.registerBorrower(t, "Alice Chen", "alice@example.com")

		_, err := kit.coord.Return(ctx, "missing", alice.ID)
		assert.ErrorIs(t, err, ErrBookNotFound)
	})
}

// racingReturnLedger settles the copy through a competing return the moment
// the caller tries to record its own, reproducing a second return committing
// between FindOpenLoan and the conditional returned_at write.
type racingReturnLedger struct {
	loan.Ledger
	copies inventory.Repository
	copyID string
	raced  bool
}

func (l *racingReturnLedger) RecordReturn(ctx context.Context, loanID string, at time.Time) (loan.Loan, error) {
	if !l.raced {
		l.raced = true
		if _, err := l.Ledger.RecordReturn(ctx, loanID, at); err != nil {
			return loan.Loan{}, err
		}
		if _, err := l.copies.TryMarkReturned(ctx, l.copyID); err != nil {
			return loan.Loan{}, err
		}
	}
	return l.Ledger.RecordReturn(ctx, loanID, at)
}

func TestCoordinator_Return_LosesConcurrentReturnRace(t *testing.T) {
	ctx := context.Background()
	kit := newTestKit()
	cw := kit.registerCopy(t)
	alice := kit.registerBorrower(t, "Alice Chen", "alice@example.com")

	_, err := kit.coord.Borrow(ctx, cw.ID, alice.ID)
	require.NoError(t, err)

	racing := &racingReturnLedger{Ledger: kit.loans, copies: kit.copies, copyID: cw.ID}
	coord := NewCoordinator(kit.borrowerRepo, kit.copies,
		PassthroughTxRunner{Stores: Stores{Copies: kit.copies, Loans: racing}})

	_, err = coord.Return(ctx, cw.ID, alice.ID)
	assert.ErrorIs(t, err, ErrActiveLoanNotFound)
	var fault *ConsistencyError
	assert.False(t, errors.As(err, &fault), "a lost return race is a conflict, not an integrity fault")

	// The winner's return stands: copy free, loan closed.
	c, err := kit.copies.GetCopy(ctx, cw.ID)
	require.NoError(t, err)
	assert.False(t, c.Borrowed)
	_, err = kit.loans.FindOpenLoan(ctx, cw.ID)
	assert.ErrorIs(t, err, loan.ErrNoOpenLoan)
}

func TestCoordinator_Return_ConsistencyFault(t *testing.T) {
	ctx := context.Background()
	kit := newTestKit()
	cw := kit.registerCopy(t)
	alice := kit.registerBorrower(t, "Alice Chen", "alice@example.com")

	// Forge an open loan without marking the copy borrowed, so the ledger
	// and the inventory flag disagree.
	_, err := kit.loans.RecordBorrow(ctx, cw.ID, alice.ID, time.Now())
	require.NoError(t, err)

	_, err = kit.coord.Return(ctx, cw.ID, alice.ID)
	var fault *ConsistencyError
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, cw.ID, fault.CopyID)
}

func borrowerEmail(i int) string {
	return "borrower" + string(rune('a'+i%26)) + string(rune('a'+i/26)) + "@example.com"
}

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"libraryhub/internal/adapters/client"
	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/viewmodel"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newLoginCmd(opts *options) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print an access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return errors.New("--username is required")
			}
			if password == "" {
				p, err := readPassword(cmd.InOrStdin(), opts.out)
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = p
			}

			ctx, cancel := opts.context()
			defer cancel()

			auth, err := opts.client().Login(ctx, username, password)
			if err != nil {
				return err
			}

			fmt.Fprintf(opts.out, "Logged in as %s (%s, %s)\n", auth.User.Username, auth.User.Role, auth.User.SchoolName)
			fmt.Fprintf(opts.out, "export %s=%s\n", envToken, auth.AccessToken)
			fmt.Fprintf(opts.out, "export %s=%s\n", envSchool, auth.User.SchoolName)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "staff username")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	return cmd
}

// readPassword masks input on a terminal and reads one line otherwise
func readPassword(in io.Reader, out io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(out, "Password: ")
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(raw)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func newBooksCmd(opts *options) *cobra.Command {
	var page int
	var search, category string

	cmd := &cobra.Command{
		Use:   "books",
		Short: "List one page of the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireSchool(); err != nil {
				return err
			}
			ctx, cancel := opts.context()
			defer cancel()

			panel := viewmodel.NewBookPanel(opts.client(), opts.school)
			if err := panel.Load(ctx, page, search, category); err != nil {
				return err
			}

			books := panel.Books()
			if len(books) == 0 {
				fmt.Fprintln(opts.out, "No books found.")
				return nil
			}

			fmt.Fprintf(opts.out, "%-5s %-30s %-20s %-15s %-9s %-9s %s\n", "ID", "Title", "Author", "Category", "Quantity", "Available", "Status")
			for _, b := range books {
				fmt.Fprintf(opts.out, "%-5d %-30s %-20s %-15s %-9d %-9d %s\n",
					b.ID, truncate(b.Title, 30), truncate(b.Author, 20), truncate(b.Category, 15), b.Quantity, b.AvailableQuantity, b.Status)
			}

			p := panel.Pagination()
			c := panel.Counters()
			fmt.Fprintf(opts.out, "\nPage %d of %d (%d titles in total)\n", p.CurrentPage, p.TotalPages, p.TotalBooks)
			fmt.Fprintf(opts.out, "This page: %d titles, %d copies, %d available, %d out of stock\n", c.Titles, c.Copies, c.Available, c.OutOfStock)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().StringVar(&search, "search", "", "search title, author and isbn")
	cmd.Flags().StringVar(&category, "category", "", "exact category")
	return cmd
}

func newLoansCmd(opts *options) *cobra.Command {
	var status, borrower string

	cmd := &cobra.Command{
		Use:   "loans",
		Short: "List book loans",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireSchool(); err != nil {
				return err
			}
			ctx, cancel := opts.context()
			defer cancel()

			panel := viewmodel.NewLoanPanel(opts.client(), opts.school, borrower)
			if err := panel.Refresh(ctx); err != nil {
				return err
			}

			printLoans(opts.out, panel.Loans(status))

			c := panel.Counters()
			fmt.Fprintf(opts.out, "\nTotal %d: %d borrowed, %d overdue, %d returned. Fines %s (outstanding %s)\n",
				c.Total, c.Borrowed, c.Overdue, c.Returned, c.Fines.StringFixed(2), c.OutstandingFines.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "borrowed | overdue | returned")
	cmd.Flags().StringVar(&borrower, "borrower", "", "student | teacher")
	return cmd
}

func printLoans(out io.Writer, loans []*models.BookLoanResponse) {
	if len(loans) == 0 {
		fmt.Fprintln(out, "No book loans found.")
		return
	}

	fmt.Fprintf(out, "%-5s %-30s %-25s %-10s %-10s %-9s %s\n", "ID", "Book", "Borrower", "Due", "Status", "Overdue", "Fine")
	for _, l := range loans {
		fmt.Fprintf(out, "%-5d %-30s %-25s %-10s %-10s %-9d %s\n",
			l.ID, truncate(bookTitle(l), 30), truncate(borrowerName(l), 25), l.DueDate.Format("2006-01-02"), l.Status, l.DaysOverdue, l.Fine.StringFixed(2))
	}
}

func newIssueCmd(opts *options) *cobra.Command {
	var bookID, studentID, teacherID uint
	var due, notes string

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a book to a student or teacher",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := client.IssueRequest{
				SchoolName: opts.school,
				BookID:     bookID,
				DueDate:    due,
				Notes:      notes,
			}
			switch {
			case studentID != 0 && teacherID != 0:
				return errors.New("use either --student or --teacher, not both")
			case studentID != 0:
				req.BorrowerType, req.BorrowerID = "student", studentID
			case teacherID != 0:
				req.BorrowerType, req.BorrowerID = "teacher", teacherID
			default:
				return errors.New("--student or --teacher is required")
			}

			ctx, cancel := opts.context()
			defer cancel()

			loan, err := viewmodel.NewLoanPanel(opts.client(), opts.school, "").Issue(ctx, req)
			if err != nil {
				return err
			}

			fmt.Fprintf(opts.out, "Book '%s' issued to %s (loan #%d, due %s)\n",
				bookTitle(loan), borrowerName(loan), loan.ID, loan.DueDate.Format("2006-01-02"))
			return nil
		},
	}

	defaultDue := time.Now().AddDate(0, 0, 14).Format("2006-01-02")
	cmd.Flags().UintVar(&bookID, "book", 0, "book ID")
	cmd.Flags().UintVar(&studentID, "student", 0, "student ID")
	cmd.Flags().UintVar(&teacherID, "teacher", 0, "teacher ID")
	cmd.Flags().StringVar(&due, "due", defaultDue, "due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&notes, "notes", "", "notes")
	return cmd
}

func newReturnCmd(opts *options) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "return <loanID>",
		Short: "Return a borrowed book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var returnDate *time.Time
			if date != "" {
				t, err := time.ParseInLocation("2006-01-02", date, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --date %q, want YYYY-MM-DD", date)
				}
				returnDate = &t
			}

			ctx, cancel := opts.context()
			defer cancel()

			loan, err := viewmodel.NewLoanPanel(opts.client(), opts.school, "").Return(ctx, id, returnDate)
			if err != nil {
				return err
			}

			fmt.Fprintf(opts.out, "Book '%s' returned by %s. Fine: %s\n", bookTitle(loan), borrowerName(loan), loan.Fine.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "return date (YYYY-MM-DD), defaults to now")
	return cmd
}

func newDeleteLoanCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-loan <loanID>",
		Short: "Delete a book loan record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := opts.context()
			defer cancel()

			panel := viewmodel.NewLoanPanel(opts.client(), opts.school, "")
			if err := panel.Delete(ctx, id); err != nil {
				return err
			}

			fmt.Fprintf(opts.out, "Book loan #%d deleted\n", id)
			printNotice(opts.out, panel.Notice())
			return nil
		},
	}
}

func newCleanupCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove loans whose book or borrower no longer exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireSchool(); err != nil {
				return err
			}
			ctx, cancel := opts.context()
			defer cancel()

			panel := viewmodel.NewLoanPanel(opts.client(), opts.school, "")
			if _, err := panel.Cleanup(ctx); err != nil {
				return err
			}
			printNotice(opts.out, panel.Notice())
			return nil
		},
	}
}

func newRestoreCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "restore",
		Aliases: []string{"fix-availability"},
		Short:   "Recount available copies of every book",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireSchool(); err != nil {
				return err
			}
			ctx, cancel := opts.context()
			defer cancel()

			panel := viewmodel.NewLoanPanel(opts.client(), opts.school, "")
			if _, err := panel.RestoreAvailability(ctx); err != nil {
				return err
			}
			printNotice(opts.out, panel.Notice())
			return nil
		},
	}
}

func newDashboardCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show circulation totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireSchool(); err != nil {
				return err
			}
			ctx, cancel := opts.context()
			defer cancel()

			d, err := opts.client().Dashboard(ctx, opts.school)
			if err != nil {
				return err
			}

			fmt.Fprintf(opts.out, "School:            %s\n", d.SchoolName)
			fmt.Fprintf(opts.out, "Titles:            %d (%d out of stock)\n", d.TotalTitles, d.OutOfStockTitles)
			fmt.Fprintf(opts.out, "Copies:            %d (%d available)\n", d.TotalCopies, d.AvailableCopies)
			fmt.Fprintf(opts.out, "Active loans:      %d (%d overdue)\n", d.ActiveLoans, d.OverdueLoans)
			fmt.Fprintf(opts.out, "Returned loans:    %d\n", d.ReturnedLoans)
			fmt.Fprintf(opts.out, "Outstanding fines: %s\n", d.OutstandingFines.StringFixed(2))
			fmt.Fprintf(opts.out, "Collected fines:   %s\n", d.CollectedFines.StringFixed(2))
			for _, kind := range []string{"student", "teacher"} {
				if s, ok := d.ByBorrowerType[kind]; ok {
					fmt.Fprintf(opts.out, "  %-8s %d active, %d overdue, fines %s\n", kind+":", s.Active, s.Overdue, s.Fines.StringFixed(2))
				}
			}
			if d.LastReconciliation != nil {
				fmt.Fprintf(opts.out, "Last repair run:   %s\n", d.LastReconciliation.Format(time.RFC3339))
			}
			return nil
		},
	}
}

func printNotice(out io.Writer, n *viewmodel.Notice) {
	if n == nil {
		return
	}
	if n.Level == viewmodel.NoticeWarning {
		fmt.Fprintf(out, "Warning: %s\n", n.Message)
		return
	}
	fmt.Fprintln(out, n.Message)
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid ID: %s", s)
	}
	return uint(id), nil
}

func bookTitle(l *models.BookLoanResponse) string {
	if l.Book == nil {
		return fmt.Sprintf("(deleted book #%d)", l.BookID)
	}
	return l.Book.Title
}

func borrowerName(l *models.BookLoanResponse) string {
	switch {
	case l.Student != nil:
		return l.Student.Name
	case l.Teacher != nil:
		return l.Teacher.Name
	}
	return fmt.Sprintf("(deleted %s #%d)", l.BorrowerType, l.BorrowerID)
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}

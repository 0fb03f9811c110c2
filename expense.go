package destiin

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/avohilabs/destiin/core"
	"github.com/avohilabs/destiin/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	employeeSeries     = "HR-EMP-.YYYY.-"
	expenseClaimSeries = "HR-EXP-.YYYY.-"
	unknownVendor      = "Unknown Vendor"
	defaultExpenseType = "Food"
	uploadErrorTitle   = "Expense Claim Auto Creation Failed"
)

// ErrNoItems is returned when the parsed receipt has no line items.
var ErrNoItems = &ValidationError{Message: "No items found in parsed data."}

// ExpensePage is the context of the receipt upload page.
type ExpensePage struct {
	Title         string
	CustomMessage string
}

// ExpensePage returns the context of the receipt upload page.
func (app *App) ExpensePage() ExpensePage {
	return ExpensePage{
		Title:         "Expense Claim Page",
		CustomMessage: "Upload your bill — it will create an Expense Claim automatically!",
	}
}

// UploadResult is returned by UploadReceipt. A failed upload only carries Success and Message.
type UploadResult struct {
	Success      bool            `json:"success"`
	Message      string          `json:"message"`
	Employee     string          `json:"employee"`
	GrandTotal   float64         `json:"grand_total"`
	FileURL      string          `json:"file_url"`
	ParsedData   json.RawMessage `json:"parsed_data"`
	ExpenseClaim string          `json:"expense_claim"`
}

// MarshalJSON omits every field but success and message from failed uploads.
func (r UploadResult) MarshalJSON() ([]byte, error) {
	if !r.Success {
		return json.Marshal(struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		}{r.Success, r.Message})
	}
	type plain UploadResult
	return json.Marshal(plain(r))
}

// decodeImage strips a data URL prefix and decodes the base64 payload.
func decodeImage(imageData string) ([]byte, error) {
	if i := strings.IndexByte(imageData, ','); i >= 0 {
		imageData = imageData[i+1:]
	}
	imageData = strings.TrimSpace(imageData)
	content, err := base64.StdEncoding.DecodeString(imageData)
	if err != nil {
		var rawErr error
		content, rawErr = base64.RawStdEncoding.DecodeString(imageData)
		if rawErr != nil {
			return nil, fmt.Errorf("decoding image: %w", err)
		}
	}
	return content, nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// UploadReceipt turns an uploaded receipt image into an Expense Claim. The image is stored,
// parsed by the OCR service and an Employee named after the vendor is found or created.
// The claim gets one expense line per receipt item and the stored file is attached to it.
//
// Missing input is returned as ErrMissingUpload. Any other failure is recorded in the error log
// and reported through an unsuccessful result. Nothing but the log entry is kept in that case.
func (app *App) UploadReceipt(ctx context.Context, imageData, filename string) (*UploadResult, error) {
	if imageData == "" || filename == "" {
		return nil, ErrMissingUpload
	}

	result, err := app.uploadReceipt(ctx, imageData, filename)
	if err != nil {
		app.LogError(ctx, uploadErrorTitle, err, core.LogWithContext(map[string]any{"filename": filename}))
		return &UploadResult{Success: false, Message: fmt.Sprintf("Upload failed: %s", err)}, nil
	}
	return result, nil
}

func (app *App) uploadReceipt(ctx context.Context, imageData, filename string) (*UploadResult, error) {
	if app.Parser == nil {
		return nil, errors.New("no receipt parser configured")
	}
	content, err := decodeImage(imageData)
	if err != nil {
		return nil, err
	}

	stored, err := app.storeFile(filename, content)
	if err != nil {
		return nil, err
	}
	keep := false
	defer func() {
		app.releaseFile(context.WithoutCancel(ctx), stored, keep)
	}()

	parsed, err := app.Parser.Parse(ctx, stored.Name, content)
	if err != nil {
		return nil, err
	}
	app.Logger.Info("parsed receipt", zap.String("file", stored.Name), zap.ByteString("parsed_data", parsed.Raw))

	vendor := parsed.VendorName
	if vendor == "" {
		vendor = unknownVendor
	}
	if len(parsed.Items) == 0 {
		return nil, ErrNoItems
	}
	grandTotal := parsed.Total()

	now := app.Now()
	var employee, claimName string
	err = app.Repo.InTx(ctx, func(tx domain.Store) error {
		fileID, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generating new uuid : %w", err)
		}
		file := &domain.File{
			Name:        fileID.String(),
			FileName:    stored.Name,
			FileURL:     stored.URL,
			IsPrivate:   false,
			ContentHash: stored.Hash,
			Size:        stored.Size,
		}
		if err := tx.InsertFile(ctx, file); err != nil {
			return fmt.Errorf("inserting file : %w", err)
		}

		employee, err = app.findOrCreateEmployee(ctx, tx, vendor)
		if err != nil {
			return err
		}

		claimName, err = tx.NextName(ctx, expenseClaimSeries, now)
		if err != nil {
			return fmt.Errorf("naming expense claim : %w", err)
		}
		claim := &domain.ExpenseClaim{
			Name:               claimName,
			NamingSeries:       expenseClaimSeries,
			Employee:           employee,
			ExpenseApprover:    app.Config.ExpenseApprover,
			TotalClaimedAmount: grandTotal,
			GrandTotal:         grandTotal,
			Remarks:            fmt.Sprintf("Auto-created from vendor %s (Bill %s)", vendor, orNA(parsed.BillNumber)),
		}
		for i, item := range parsed.Items {
			claim.Expenses = append(claim.Expenses, domain.ExpenseClaimDetail{
				Idx:         i + 1,
				ExpenseType: defaultExpenseType,
				Description: fmt.Sprintf("%s (%s x %s %s)", orNA(item.Description), orNA(item.Quantity), orNA(item.Rate), item.Currency),
				Amount:      item.Amount,
			})
		}
		if err := tx.InsertExpenseClaim(ctx, claim); err != nil {
			return fmt.Errorf("inserting expense claim : %w", err)
		}

		if err := tx.AttachFile(ctx, file.Name, "Expense Claim", claimName); err != nil {
			return fmt.Errorf("attaching file : %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	keep = true

	return &UploadResult{
		Success:      true,
		Message:      fmt.Sprintf("Expense Claim %s created successfully for %s!", claimName, vendor),
		Employee:     employee,
		GrandTotal:   grandTotal,
		FileURL:      stored.URL,
		ParsedData:   parsed.Raw,
		ExpenseClaim: claimName,
	}, nil
}

// findOrCreateEmployee returns the employee whose first name is vendor, creating one if needed.
func (app *App) findOrCreateEmployee(ctx context.Context, tx domain.Store, vendor string) (string, error) {
	name, err := tx.FindEmployeeByFirstName(ctx, vendor)
	if err == nil {
		app.Logger.Info("using existing employee", zap.String("employee", name))
		return name, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("finding employee : %w", err)
	}

	now := app.Now()
	name, err = tx.NextName(ctx, employeeSeries, now)
	if err != nil {
		return "", fmt.Errorf("naming employee : %w", err)
	}
	employee := &domain.Employee{
		Name:            name,
		NamingSeries:    employeeSeries,
		FirstName:       vendor,
		Gender:          "Other",
		DateOfBirth:     "1990-01-01",
		DateOfJoining:   now.Format("2006-01-02"),
		Status:          "Active",
		Company:         app.Config.Company,
		ExpenseApprover: app.Config.ExpenseApprover,
	}
	if err := tx.InsertEmployee(ctx, employee); err != nil {
		return "", fmt.Errorf("inserting employee : %w", err)
	}
	app.Logger.Info("created new employee", zap.String("employee", name))
	return name, nil
}

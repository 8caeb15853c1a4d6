package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"billdocs/internal/document"
	"billdocs/internal/format"
	"billdocs/internal/logger"
	"billdocs/internal/session"
	"billdocs/internal/validation"
	"billdocs/pkg/models"
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Change document fields in the session",
	Example: `  billdocs set --type receipt
  billdocs set --number 042 --date 2025-03-01 --due 2025-03-31
  billdocs set --vat 7.5 --notes "Payment within 30 days"`,
	Args: cobra.NoArgs,
	RunE: runSet,
}

var clientCmd = &cobra.Command{
	Use:     "client",
	Short:   "Set the client the document is addressed to",
	Example: `  billdocs client --name "Ada Obi" --city Abuja --email ada@example.com`,
	Args:    cobra.NoArgs,
	RunE:    runClient,
}

var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Add, change, remove or list line items",
}

var itemAddCmd = &cobra.Command{
	Use:     "add",
	Short:   "Append a line item",
	Example: `  billdocs item add --description "Panel upgrade" --quantity 2 --rate 1000.75`,
	Args:    cobra.NoArgs,
	RunE:    runItemAdd,
}

var itemEditCmd = &cobra.Command{
	Use:   "edit <item-id>",
	Short: "Change a line item; the id may be shortened to a unique prefix",
	Args:  cobra.ExactArgs(1),
	RunE:  runItemEdit,
}

var itemRemoveCmd = &cobra.Command{
	Use:   "remove <item-id>",
	Short: "Remove a line item",
	Args:  cobra.ExactArgs(1),
	RunE:  runItemRemove,
}

var itemListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show line items and totals",
	Args:  cobra.NoArgs,
	RunE:  runItemList,
}

func init() {
	rootCmd.AddCommand(setCmd, clientCmd, itemCmd)
	itemCmd.AddCommand(itemAddCmd, itemEditCmd, itemRemoveCmd, itemListCmd)

	setCmd.Flags().StringP("type", "t", "", "Document type: invoice, quotation or receipt")
	setCmd.Flags().String("number", "", "Document number")
	setCmd.Flags().String("date", "", "Issue date (YYYY-MM-DD)")
	setCmd.Flags().String("due", "", "Due date, or valid-until date for quotations (YYYY-MM-DD)")
	setCmd.Flags().Float64("vat", 0, "VAT rate in percent")
	setCmd.Flags().String("notes", "", "Notes printed at the bottom")

	clientCmd.Flags().String("name", "", "Client name")
	clientCmd.Flags().String("address", "", "Street address")
	clientCmd.Flags().String("city", "", "City")
	clientCmd.Flags().String("postal", "", "Postal code")
	clientCmd.Flags().String("email", "", "Email address")
	clientCmd.Flags().String("phone", "", "Phone number")

	for _, c := range []*cobra.Command{itemAddCmd, itemEditCmd} {
		c.Flags().StringP("description", "d", "", "Description")
		c.Flags().Float64P("quantity", "q", 1, "Quantity")
		c.Flags().Float64P("rate", "r", 0, "Unit rate")
	}
}

func runSet(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("set")

	s, err := loadSession(cmd)
	if err != nil {
		return err
	}

	d := &s.Document
	flags := cmd.Flags()
	if flags.Changed("type") {
		v, _ := flags.GetString("type")
		d.Type = models.DocumentType(v)
	}
	if flags.Changed("number") {
		d.DocumentNumber, _ = flags.GetString("number")
	}
	if flags.Changed("date") {
		d.DateIssued, _ = flags.GetString("date")
	}
	if flags.Changed("due") {
		d.DueDate, _ = flags.GetString("due")
	}
	if flags.Changed("vat") {
		d.VATRate, _ = flags.GetFloat64("vat")
	}
	if flags.Changed("notes") {
		d.Notes, _ = flags.GetString("notes")
	}

	if err := checkDocument(s, log); err != nil {
		return err
	}
	return saveSession(cmd, s)
}

func runClient(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("client")

	s, err := loadSession(cmd)
	if err != nil {
		return err
	}

	c := s.Document.Client
	setStringFlags(cmd, map[string]*string{
		"name":    &c.Name,
		"address": &c.Address,
		"city":    &c.City,
		"postal":  &c.PostalCode,
		"email":   &c.Email,
		"phone":   &c.Phone,
	})
	if err := validation.ValidateParty(c); err != nil {
		return fmt.Errorf("invalid client details: %w", err)
	}
	s.SetClient(c)

	log.Debug().Str("client", c.Name).Msg("Client updated")
	return saveSession(cmd, s)
}

func runItemAdd(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}

	// A fresh document starts with one blank row; fill it instead of adding another.
	var item models.LineItem
	if items := s.Document.LineItems; len(items) == 1 && items[0].Description == "" && items[0].Rate == 0 {
		item = items[0]
	} else {
		item = s.AddLineItem()
	}

	description, _ := cmd.Flags().GetString("description")
	quantity, _ := cmd.Flags().GetFloat64("quantity")
	rate, _ := cmd.Flags().GetFloat64("rate")
	if err := applyItemEdits(s, item.ID, map[document.Field]any{
		document.FieldDescription: description,
		document.FieldQuantity:    quantity,
		document.FieldRate:        rate,
	}); err != nil {
		return err
	}

	if err := saveSession(cmd, s); err != nil {
		return err
	}
	fmt.Printf("Added item %s\n", shortID(item.ID))
	return nil
}

func runItemEdit(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}
	id, err := resolveItemID(s, args[0])
	if err != nil {
		return err
	}

	edits := map[document.Field]any{}
	flags := cmd.Flags()
	if flags.Changed("description") {
		edits[document.FieldDescription], _ = flags.GetString("description")
	}
	if flags.Changed("quantity") {
		edits[document.FieldQuantity], _ = flags.GetFloat64("quantity")
	}
	if flags.Changed("rate") {
		edits[document.FieldRate], _ = flags.GetFloat64("rate")
	}
	if len(edits) == 0 {
		return fmt.Errorf("nothing to change: use --description, --quantity or --rate")
	}
	if err := applyItemEdits(s, id, edits); err != nil {
		return err
	}
	return saveSession(cmd, s)
}

func runItemRemove(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}
	id, err := resolveItemID(s, args[0])
	if err != nil {
		return err
	}
	if err := s.RemoveLineItem(id); err != nil {
		return err
	}
	return saveSession(cmd, s)
}

func runItemList(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}

	symbol := cfg.CurrencySymbol
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDescription\tQuantity\tRate\tAmount\t")
	for _, item := range s.Document.LineItems {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
			shortID(item.ID),
			item.Description,
			format.Number(item.Quantity),
			format.Money(symbol, item.Rate),
			format.Money(symbol, item.Amount))
	}
	totals := s.Totals()
	fmt.Fprintf(w, "\t\t\tSubtotal\t%s\t\n", format.Money(symbol, totals.Subtotal))
	if s.Document.VATRate > 0 {
		fmt.Fprintf(w, "\t\t\tVAT (%s%%)\t%s\t\n", format.Number(s.Document.VATRate), format.Money(symbol, totals.VATAmount))
	}
	fmt.Fprintf(w, "\t\t\tTotal\t%s\t\n", format.Money(symbol, totals.Total))
	return w.Flush()
}

func applyItemEdits(s *session.Session, id string, edits map[document.Field]any) error {
	for _, field := range []document.Field{document.FieldDescription, document.FieldQuantity, document.FieldRate} {
		value, ok := edits[field]
		if !ok {
			continue
		}
		if err := s.EditLineItem(id, field, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", field, err)
		}
	}
	return nil
}

// resolveItemID accepts a full line item id or a unique prefix of one.
func resolveItemID(s *session.Session, prefix string) (string, error) {
	var match string
	for _, item := range s.Document.LineItems {
		if item.ID == prefix {
			return item.ID, nil
		}
		if strings.HasPrefix(item.ID, prefix) {
			if match != "" {
				return "", fmt.Errorf("item id %q is ambiguous", prefix)
			}
			match = item.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", session.ErrLineItemNotFound, prefix)
	}
	return match, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// checkDocument validates the session document and warns about a VAT rate
// outside 0..100, which is kept as entered.
func checkDocument(s *session.Session, log zerolog.Logger) error {
	if err := validation.ValidateDocument(s.Document); err != nil {
		return fmt.Errorf("document is not valid: %w", err)
	}
	if validation.VATOutOfRange(s.Document.VATRate) {
		log.Warn().
			Float64("vat_rate", s.Document.VATRate).
			Msg("VAT rate outside 0-100%, using it as entered")
	}
	return nil
}

func setStringFlags(cmd *cobra.Command, fields map[string]*string) {
	for name, dst := range fields {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetString(name)
		}
	}
}

// Package contacts loads the recipient list that drives one batch.
//
// The source is a CSV file with a header row. Every column becomes a field of
// the Recipient; a handful of columns are recognized and exposed through typed
// accessors, and every column (recognized or not) stays available for template
// substitution through Recipient.Fields.
//
// # Recognized columns
//
//   - email: primary recipient address (required for dispatch)
//   - name, lang: display name and template language tag
//   - cc, bcc: comma or semicolon separated address lists
//   - attachments: comma or semicolon separated file patterns
//   - subject_file, body_file, body_html_file: per-row template overrides
//
// # Usage
//
//	recipients, err := contacts.LoadFile("contacts.csv")
//	if err != nil {
//		return err // wraps contacts.ErrSourceUnavailable
//	}
//	for _, r := range recipients {
//		fmt.Println(r.Email(), r.Lang())
//	}
//
// Files saved by spreadsheet tools often start with a UTF-8 byte order mark;
// it is stripped before the header is parsed.
package contacts

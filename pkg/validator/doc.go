// Package validator provides the syntax checks and schema validation used by the mailer.
//
// # Syntax checks
//
// Pure predicates with no side effects:
//
//	validator.IsEmail("user@example.com")                    // true
//	validator.IsSMTPConnectionURL("smtps://u:p@mail.host")   // true, credentials required
//	validator.IsSMTPURL("smtp://relay.internal:25")          // true, credentials optional
//	validator.IsPort("587")                                  // true
//
// # Schemas
//
// Schemas is a registry of named struct schemas backed by go-playground/validator.
// A schema is registered with a sample value; Validate rejects values of any other type.
//
//	schemas := validator.NewSchemas()
//	_ = schemas.Register("maildata", mailer.Message{})
//
//	if err := schemas.Validate("maildata", msg); err != nil {
//		if ve := validator.ExtractValidationErrors(err); ve != nil {
//			ve.Translate(i18n.T) // optional
//		}
//	}
//
// Besides the built-in go-playground tags, schemas understand:
//
//   - mailaddr: string passes IsEmail
//   - mailaddrs: every element of a string slice passes IsEmail
//   - smtpurl: string passes IsSMTPURL
//   - port: value passes IsPort
//
// # Errors
//
// Schema failures are returned as ValidationErrors. Each entry carries a default English
// message plus a translation key and values so hosts can localise the output.
package validator

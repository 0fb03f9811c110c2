// Package receipt talks to the external receipt parsing (OCR) service.
//
// The service accepts a multipart upload with the image in the "file" field and a
// "page_range" form value, and answers with JSON of the form:
//
//	{
//	  "vendor_name": "Cafe Mocha",
//	  "bill_number": "1042",
//	  "items": [
//	    {"description": "Cappuccino", "quantity": 2, "rate": 120, "currency": "INR", "amount": 240}
//	  ]
//	}
//
// Fields may be missing or null; Decode keeps whatever is present and leaves
// defaults to the caller.
package receipt

// Package openstates provides a client for the Open States legislative API.
//
// Open States publishes bills, legislators and committees for every US
// state legislature. This package covers the read-only v1 endpoints and
// returns every response as an ordered *collection.Collection, since the
// shape of the JSON varies per endpoint.
//
// # Usage
//
// Create a client with your API key, or let it read OPEN_STATES_KEY:
//
//	logger := zerolog.New(os.Stderr)
//	client := openstates.NewClientFromEnv(logger,
//		openstates.WithTimeout(10*time.Second),
//	)
//
//	ctx := context.Background()
//	legislators, err := client.ListLegislators(ctx, "tx", openstates.Params{
//		"chamber": "upper",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, leg := range legislators.Items() {
//		name, _ := leg.Get("full_name")
//		fmt.Println(name)
//	}
//
// # Requests
//
// Every request carries the key as the "apikey" query parameter. Operation
// defaults (such as "state" for legislators) are merged next and caller
// params last, so a caller can override anything. Singular lookups use the
// upstream path form "bills//{id}" with its doubled separator.
//
// # Status
//
// When a response is a JSON object with a top-level "status" field, its
// value is recorded and exposed through Client.Status. It does not affect
// the result unless WithStatusCheck(true) is given.
//
// # Error Handling
//
//   - ErrMissingAPIKey (*MissingAPIKeyError): no key configured, nothing sent
//   - *APIRequestError: transport failure, non-2xx response or a body that
//     is not valid JSON; matches ErrAPIRequest with errors.Is
//
//	var reqErr *openstates.APIRequestError
//	if errors.As(err, &reqErr) && reqErr.IsNotFound() {
//		// Handle unknown id
//	}
//
// Nothing is retried.
package openstates

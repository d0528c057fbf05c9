// Package authsdk is the Go client for the Tradepost authentication service.
//
// The package doubles as the canonical definition of the service's request
// and response types: the HTTP handlers encode these exact structs, so a
// client built on this package never drifts from the server.
//
// Unauthenticated calls hang off SDKClient; Login and RefreshGrant return a
// Session that attaches the bearer token to subsequent calls and silently
// refreshes it shortly before expiry.
//
//	client := authsdk.NewSDKClient("https://auth.tradepost.example")
//	session, err := client.Login(ctx, "buyer@example.com", "password123")
//	if err != nil { ... }
//	profile, err := session.Me(ctx)
package authsdk

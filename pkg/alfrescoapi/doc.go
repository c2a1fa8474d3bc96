// Package alfrescoapi is the session facade of the Alfresco client.
//
// An API selects one session mode from its configuration and owns the
// authentication strategies and resource clients of that mode:
//
//   - BASIC auth with provider ECM: content repository ticket login.
//   - BASIC auth with provider BPM: process engine ticket login.
//   - BASIC auth with provider ALL: both logins, run concurrently.
//   - OAUTH auth: one OAuth2 session shared by both backends.
//
// Basic Usage:
//
//	api, err := alfrescoapi.New(&alfresco.Config{
//		HostEcm:  "http://localhost:8080",
//		Provider: alfresco.ProviderECM,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer api.Close()
//
//	if _, err := api.Login(ctx, "admin", "admin"); err != nil {
//		log.Fatal(err)
//	}
//
//	info, err := api.Discovery().GetRepositoryInformation(ctx)
//
// Any call of a resource client that fails with HTTP 401 invalidates the
// session. Every resource call failure is published as an alfresco.EventError
// event:
//
//	api.On(alfresco.EventError, func(event alfresco.Event) {
//		log.Printf("%s failed with %d: %v", event.Source, event.StatusCode, event.Err)
//	})
package alfrescoapi

// Package httpclient provides HTTP request construction and execution for
// the flashload load generator.
//
// [NewRequestBuilder] turns the run configuration into a reusable request
// template (method, canonical headers, inline or file body); [NewClient]
// creates the shared client whose timeout bounds every attempt; [Driver]
// ties both together behind the runner's Driver interface:
//
//	driver, err := httpclient.NewDriver(cfg)
//	if err != nil {
//		return err // run-fatal, nothing was attempted
//	}
//	outcome := driver.Execute(ctx)
package httpclient

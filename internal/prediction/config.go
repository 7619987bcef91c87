// internal/prediction/config.go
package prediction

// Config controls the prediction service. A CacheSize of 0 disables the
// result cache.
type Config struct {
	CacheSize int
}

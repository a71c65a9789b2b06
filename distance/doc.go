// Package distance provides the distance kernels used by the template
// matchers and optimizers.
package distance

package firebase

import "context"

// TokenClient checks a raw identity token with the provider and returns
// its claims. The Firebase Admin SDK auth client satisfies this shape
// through a thin adapter; tests supply stubs.
type TokenClient interface {
	VerifyIDToken(ctx context.Context, tokenString string) (map[string]any, error)
}

// TokenClientFunc adapts a function to the TokenClient interface.
type TokenClientFunc func(ctx context.Context, tokenString string) (map[string]any, error)

func (f TokenClientFunc) VerifyIDToken(ctx context.Context, tokenString string) (map[string]any, error) {
	return f(ctx, tokenString)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

package app

// Handle binds fn to events of type E.
func Handle[E any](fn func(*E)) Handler {
	return newHandler(fn, KeyOf[E](), nil, func(ev any, _ []any) {
		fn(ev.(*E))
	})
}

// Handle1 binds fn to events of type E; fn also receives 1 resolved value.
func Handle1[E, A any](fn func(*E, *A)) Handler {
	return newHandler(fn, KeyOf[E](), []TypeKey{KeyOf[A]()}, func(ev any, d []any) {
		fn(ev.(*E), d[0].(*A))
	})
}

// Handle2 binds fn to events of type E; fn also receives 2 resolved values.
func Handle2[E, A, B any](fn func(*E, *A, *B)) Handler {
	return newHandler(fn, KeyOf[E](), []TypeKey{KeyOf[A](), KeyOf[B]()}, func(ev any, d []any) {
		fn(ev.(*E), d[0].(*A), d[1].(*B))
	})
}

// Handle3 binds fn to events of type E; fn also receives 3 resolved values.
func Handle3[E, A, B, C any](fn func(*E, *A, *B, *C)) Handler {
	return newHandler(fn, KeyOf[E](), []TypeKey{KeyOf[A](), KeyOf[B](), KeyOf[C]()}, func(ev any, d []any) {
		fn(ev.(*E), d[0].(*A), d[1].(*B), d[2].(*C))
	})
}

// Handle4 binds fn to events of type E; fn also receives 4 resolved values.
func Handle4[E, A, B, C, D any](fn func(*E, *A, *B, *C, *D)) Handler {
	return newHandler(fn, KeyOf[E](), []TypeKey{KeyOf[A](), KeyOf[B](), KeyOf[C](), KeyOf[D]()}, func(ev any, d []any) {
		fn(ev.(*E), d[0].(*A), d[1].(*B), d[2].(*C), d[3].(*D))
	})
}

// Handle5 binds fn to events of type E; fn also receives 5 resolved values.
func Handle5[E, A, B, C, D, F any](fn func(*E, *A, *B, *C, *D, *F)) Handler {
	return newHandler(fn, KeyOf[E](), []TypeKey{KeyOf[A](), KeyOf[B](), KeyOf[C](), KeyOf[D](), KeyOf[F]()}, func(ev any, d []any) {
		fn(ev.(*E), d[0].(*A), d[1].(*B), d[2].(*C), d[3].(*D), d[4].(*F))
	})
}

// Handle6 binds fn to events of type E; fn also receives 6 resolved values.
func Handle6[E, A, B, C, D, F, G any](fn func(*E, *A, *B, *C, *D, *F, *G)) Handler {
	return newHandler(fn, KeyOf[E](), []TypeKey{KeyOf[A](), KeyOf[B](), KeyOf[C](), KeyOf[D](), KeyOf[F](), KeyOf[G]()}, func(ev any, d []any) {
		fn(ev.(*E), d[0].(*A), d[1].(*B), d[2].(*C), d[3].(*D), d[4].(*F), d[5].(*G))
	})
}

// Handle7 binds fn to events of type E; fn also receives 7 resolved values.
func Handle7[E, A, B, C, D, F, G, H any](fn func(*E, *A, *B, *C, *D, *F, *G, *H)) Handler {
	return newHandler(fn, KeyOf[E](), []TypeKey{KeyOf[A](), KeyOf[B](), KeyOf[C](), KeyOf[D](), KeyOf[F](), KeyOf[G](), KeyOf[H]()}, func(ev any, d []any) {
		fn(ev.(*E), d[0].(*A), d[1].(*B), d[2].(*C), d[3].(*D), d[4].(*F), d[5].(*G), d[6].(*H))
	})
}

// Handle8 binds fn to events of type E; fn also receives 8 resolved values.
func Handle8[E, A, B, C, D, F, G, H, I any](fn func(*E, *A, *B, *C, *D, *F, *G, *H, *I)) Handler {
	return newHandler(fn, KeyOf[E](), []TypeKey{KeyOf[A](), KeyOf[B](), KeyOf[C](), KeyOf[D](), KeyOf[F](), KeyOf[G](), KeyOf[H](), KeyOf[I]()}, func(ev any, d []any) {
		fn(ev.(*E), d[0].(*A), d[1].(*B), d[2].(*C), d[3].(*D), d[4].(*F), d[5].(*G), d[6].(*H), d[7].(*I))
	})
}

// Handle9 binds fn to events of type E; fn also receives 9 resolved values.
func Handle9[E, A, B, C, D, F, G, H, I, J any](fn func(*E, *A, *B, *C, *D, *F, *G, *H, *I, *J)) Handler {
	return newHandler(fn, KeyOf[E](), []TypeKey{KeyOf[A](), KeyOf[B](), KeyOf[C](), KeyOf[D](), KeyOf[F](), KeyOf[G](), KeyOf[H](), KeyOf[I](), KeyOf[J]()}, func(ev any, d []any) {
		fn(ev.(*E), d[0].(*A), d[1].(*B), d[2].(*C), d[3].(*D), d[4].(*F), d[5].(*G), d[6].(*H), d[7].(*I), d[8].(*J))
	})
}

// Handle10 binds fn to events of type E; fn also receives 10 resolved values.
func Handle10[E, A, B, C, D, F, G, H, I, J, K any](fn func(*E, *A, *B, *C, *D, *F, *G, *H, *I, *J, *K)) Handler {
	return newHandler(fn, KeyOf[E](), []TypeKey{KeyOf[A](), KeyOf[B](), KeyOf[C](), KeyOf[D](), KeyOf[F](), KeyOf[G](), KeyOf[H](), KeyOf[I](), KeyOf[J](), KeyOf[K]()}, func(ev any, d []any) {
		fn(ev.(*E), d[0].(*A), d[1].(*B), d[2].(*C), d[3].(*D), d[4].(*F), d[5].(*G), d[6].(*H), d[7].(*I), d[8].(*J), d[9].(*K))
	})
}

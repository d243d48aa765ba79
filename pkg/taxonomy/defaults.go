package taxonomy

import (
	"fmt"

	"github.com/AlexOliinyk1/careerintel/pkg/question"
)

// Default returns the built-in .NET interview taxonomy: keyword tables for
// every topic plus the curated question bank. cloud-devops and messaging
// carry keywords only, so questions classified there surface as
// dynamic-only topics.
func Default() *Bank {
	b, err := NewBank(defaultTopics(), defaultAreas())
	if err != nil {
		panic(fmt.Sprintf("taxonomy: built-in bank invalid: %v", err))
	}
	return b
}

func defaultTopics() []Topic {
	return []Topic{
		{
			ID:   "architecture",
			Name: "Architecture & Design Patterns",
			Keywords: []string{
				"solid", "singleton", "factory", "repository", "decorator",
				"mediator", "cqrs", "microservice", "monolith",
				"event sourcing", "domain driven", "clean architecture",
				"design pattern", "coupling", "cohesion", "bounded context",
			},
		},
		{
			ID:   "aspnet-core",
			Name: "ASP.NET Core",
			Keywords: []string{
				"asp.net", "aspnet", "kestrel", "middleware", "minimal api",
				"mvc", "razor", "blazor", "controller", "routing",
				"model binding", "action filter", "dependency injection",
				"hosted service", "signalr",
			},
		},
		{
			ID:   "cloud-devops",
			Name: "Cloud & DevOps",
			Keywords: []string{
				"azure", "aws", "docker", "kubernetes", "container",
				"terraform", "pipeline", "deployment", "devops",
				"observability", "prometheus", "serverless", "helm",
				"infrastructure as code",
			},
		},
		{
			ID:   "concurrency",
			Name: "Concurrency & Async",
			Keywords: []string{
				"async", "await", "task", "thread", "parallel", "lock",
				"deadlock", "race condition", "semaphore", "mutex",
				"cancellation", "channel", "concurrent", "synchronization",
				"thread pool", "interlocked",
			},
		},
		{
			ID:   "csharp-language",
			Name: "C# Language",
			Keywords: []string{
				"csharp", "linq", "delegate", "lambda", "generics",
				"interface", "inheritance", "polymorphism", "record",
				"struct", "pattern matching", "extension method",
				"nullable", "reflection", "yield", "closure",
			},
		},
		{
			ID:   "databases",
			Name: "Databases & Data Access",
			Keywords: []string{
				"sql", "database", "entity framework", "ef core", "dapper",
				"index", "transaction", "stored procedure", "migration",
				"query", "normalization", "nosql", "isolation level",
				"connection pool", "orm",
			},
		},
		{
			ID:   "dotnet-runtime",
			Name: ".NET Runtime & Memory",
			Keywords: []string{
				"gc", "clr", "jit", "il", "garbage collect", "heap",
				"stack", "boxing", "unboxing", "allocation", "span",
				"memory leak", "finalizer", "dispose", "idisposable",
				"large object heap",
			},
		},
		{
			ID:   "messaging",
			Name: "Messaging & Event-Driven Systems",
			Keywords: []string{
				"kafka", "rabbitmq", "message queue", "service bus",
				"event driven", "publisher", "subscriber", "dead letter",
				"outbox", "idempotency", "broker", "at least once",
				"partition",
			},
		},
		{
			ID:   "security",
			Name: "Security & Identity",
			Keywords: []string{
				"authentication", "authorization", "jwt", "oauth",
				"openid", "identity", "cors", "csrf", "xss",
				"sql injection", "certificate", "encryption", "hashing",
				"secret", "claims",
			},
		},
		{
			ID:   "testing",
			Name: "Testing & Quality",
			Keywords: []string{
				"unit test", "integration test", "mock", "stub", "xunit",
				"nunit", "moq", "tdd", "assert", "test double", "coverage",
				"fixture", "end to end", "flaky",
			},
		},
		{
			ID:   "web-api",
			Name: "Web APIs & HTTP",
			Keywords: []string{
				"rest", "http", "grpc", "graphql", "endpoint", "swagger",
				"openapi", "status code", "versioning", "rate limit",
				"webhook", "content negotiation", "idempotent", "payload",
			},
		},
	}
}

func defaultAreas() []TopicArea {
	return []TopicArea{
		{
			ID:   "architecture",
			Name: "Architecture & Design Patterns",
			KeyConcepts: []string{
				"SOLID principles", "dependency inversion", "layered vs clean architecture",
				"CQRS", "microservice trade-offs",
			},
			Questions: []BankQuestion{
				{
					Question:   "What are the SOLID principles and why do they matter?",
					Answer:     "Single responsibility, open/closed, Liskov substitution, interface segregation, and dependency inversion. Together they keep modules replaceable and testable as a codebase grows.",
					Difficulty: question.Mid,
					Tags:       []string{"solid", "design"},
				},
				{
					Question:   "When would you split a monolith into microservices, and when would you refuse to?",
					Answer:     "Split when teams and deployment cadence are constrained by the shared codebase and the domain has clear seams. Refuse when the domain boundaries are still shifting or the operational cost of distribution outweighs the autonomy gained.",
					Difficulty: question.Senior,
					Tags:       []string{"microservice", "monolith"},
				},
				{
					Question:   "Describe the repository pattern. What problems does it solve and what does it cost?",
					Answer:     "It puts data access behind a collection-like interface so domain code stays persistence-agnostic and testable. The cost is an extra abstraction that can hide query capabilities the ORM already exposes.",
					Difficulty: question.Mid,
					Tags:       []string{"repository", "patterns"},
				},
				{
					Question:   "What is CQRS and when is it worth the complexity?",
					Answer:     "Command Query Responsibility Segregation separates the write model from the read model. It pays off when reads and writes have very different shapes or scaling needs; for a simple CRUD domain it is overhead.",
					Difficulty: question.Senior,
					Tags:       []string{"cqrs", "event sourcing"},
				},
			},
		},
		{
			ID:   "aspnet-core",
			Name: "ASP.NET Core",
			KeyConcepts: []string{
				"middleware pipeline", "dependency injection lifetimes",
				"minimal APIs vs MVC", "model binding", "hosted services",
			},
			Questions: []BankQuestion{
				{
					Question:   "Explain the ASP.NET Core middleware pipeline. How does ordering affect behavior?",
					Answer:     "Each middleware wraps the next delegate, so requests flow down the registration order and responses flow back up. Ordering matters because a component like authentication must run before anything that relies on the authenticated user.",
					Difficulty: question.Mid,
					Tags:       []string{"middleware", "pipeline"},
				},
				{
					Question:   "What are the differences between transient, scoped, and singleton service lifetimes?",
					Answer:     "Transient services are created on every resolution, scoped once per request, singleton once per process. Capturing a scoped service inside a singleton is the classic lifetime bug.",
					Difficulty: question.Junior,
					Tags:       []string{"dependency injection", "lifetimes"},
				},
				{
					Question:   "How does model binding work in ASP.NET Core, and how do you customize it?",
					Answer:     "Binders populate action parameters from route values, query strings, headers, and the body in a defined order. Custom binding is done with IModelBinder implementations or binding source attributes.",
					Difficulty: question.Mid,
					Tags:       []string{"model binding", "mvc"},
				},
			},
		},
		{
			ID:   "concurrency",
			Name: "Concurrency & Async",
			KeyConcepts: []string{
				"async/await state machines", "Task vs Thread",
				"synchronization primitives", "deadlock avoidance",
				"cancellation propagation",
			},
			Questions: []BankQuestion{
				{
					Question:   "What happens under the hood when you use async and await?",
					Answer:     "The compiler rewrites the method into a state machine; await yields control at suspension points and resumes on a captured context when the awaited task completes. No thread is blocked while waiting.",
					Difficulty: question.Mid,
					Tags:       []string{"async", "await"},
				},
				{
					Question:   "How can awaiting a task cause a deadlock in a UI or legacy ASP.NET context, and how do you avoid it?",
					Answer:     "Blocking on an async call with .Result while the continuation needs the same single-threaded context deadlocks. Avoid sync-over-async, or use ConfigureAwait(false) in library code.",
					Difficulty: question.Senior,
					Tags:       []string{"deadlock", "synchronization context"},
				},
				{
					Question:   "Compare lock, SemaphoreSlim, and Interlocked. When is each appropriate?",
					Answer:     "lock guards a critical section on one process thread, SemaphoreSlim supports async waiting and counted entry, Interlocked gives lock-free atomic operations for single values. Choose the cheapest primitive that makes the invariant hold.",
					Difficulty: question.Senior,
					Tags:       []string{"lock", "semaphore"},
				},
				{
					Question:   "What is a race condition? Give an example of producing and fixing one.",
					Answer:     "Two operations touch shared state with an unsynchronized check-then-act, so the outcome depends on timing. A counter incremented from two threads loses updates; fixing it means Interlocked.Increment or a lock.",
					Difficulty: question.Junior,
					Tags:       []string{"race condition", "thread"},
				},
			},
		},
		{
			ID:   "csharp-language",
			Name: "C# Language",
			KeyConcepts: []string{
				"value vs reference semantics", "LINQ deferred execution",
				"delegates and events", "generics and constraints",
				"records and immutability",
			},
			Questions: []BankQuestion{
				{
					Question:   "What is deferred execution in LINQ and when does it bite?",
					Answer:     "Query operators build a pipeline that only runs on enumeration, so the same query re-executes every time it is iterated. It bites when the underlying source changes between enumerations or when a database query runs more often than intended.",
					Difficulty: question.Mid,
					Tags:       []string{"linq", "deferred execution"},
				},
				{
					Question:   "Explain the difference between a class and a record in C#.",
					Answer:     "Records get value-based equality, a readable ToString, and with-expressions for non-destructive mutation. Classes keep reference equality and are the default for mutable entities.",
					Difficulty: question.Junior,
					Tags:       []string{"record", "equality"},
				},
				{
					Question:   "What are delegates, and how do events build on them?",
					Answer:     "A delegate is a type-safe method reference; multicast delegates hold invocation lists. Events restrict a delegate field so outside code can only subscribe and unsubscribe, not invoke or replace it.",
					Difficulty: question.Mid,
					Tags:       []string{"delegate", "events"},
				},
				{
					Question:   "How do generic constraints work, and why would you use them instead of casting?",
					Answer:     "Constraints like where T : class or an interface bound let the compiler verify members at compile time and avoid boxing for value types. Casting defers the check to runtime and loses both safety and performance.",
					Difficulty: question.Mid,
					Tags:       []string{"generics", "constraints"},
				},
			},
		},
		{
			ID:   "databases",
			Name: "Databases & Data Access",
			KeyConcepts: []string{
				"indexing strategy", "transaction isolation levels",
				"EF Core change tracking", "N+1 queries", "migrations",
			},
			Questions: []BankQuestion{
				{
					Question:   "How does a database index speed up reads, and what does it cost on writes?",
					Answer:     "An index is a sorted structure the engine can seek instead of scanning the table. Every insert and update must also maintain the index, so over-indexing slows writes and bloats storage.",
					Difficulty: question.Junior,
					Tags:       []string{"index", "performance"},
				},
				{
					Question:   "Explain transaction isolation levels and the anomalies each one prevents.",
					Answer:     "Read uncommitted allows dirty reads; read committed prevents them; repeatable read stops non-repeatable reads; serializable also blocks phantoms. Stricter levels trade throughput for consistency.",
					Difficulty: question.Senior,
					Tags:       []string{"transaction", "isolation level"},
				},
				{
					Question:   "What causes the N+1 query problem with an ORM and how do you fix it?",
					Answer:     "Lazily loading a navigation property inside a loop issues one query per row on top of the original list query. Fix it with eager loading, projection into a DTO, or an explicit join.",
					Difficulty: question.Mid,
					Tags:       []string{"entity framework", "orm"},
				},
			},
		},
		{
			ID:   "dotnet-runtime",
			Name: ".NET Runtime & Memory",
			KeyConcepts: []string{
				"generational GC", "IDisposable and finalizers",
				"boxing", "Span<T> and stack allocation", "JIT compilation",
			},
			Questions: []BankQuestion{
				{
					Question:   "How does the .NET garbage collector work? Explain generations and the large object heap.",
					Answer:     "The GC partitions the heap into generations so short-lived objects are collected cheaply in gen 0, survivors are promoted, and objects over 85KB go to the large object heap which is collected with gen 2. Collection compacts the small-object heap; the LOH normally is not compacted.",
					Difficulty: question.Senior,
					Tags:       []string{"gc", "heap"},
				},
				{
					Question:   "What is boxing, and why is it a performance concern?",
					Answer:     "Boxing wraps a value type in a heap object to treat it as object or an interface. It allocates and later burdens the GC, which hurts in hot paths and was a classic cost of non-generic collections.",
					Difficulty: question.Junior,
					Tags:       []string{"boxing", "allocation"},
				},
				{
					Question:   "When do you implement IDisposable, and how does the dispose pattern interact with finalizers?",
					Answer:     "Implement it when a type owns unmanaged resources or other disposables. The pattern lets Dispose release resources deterministically and suppress finalization; the finalizer is only a safety net and should be rare.",
					Difficulty: question.Mid,
					Tags:       []string{"dispose", "idisposable"},
				},
			},
		},
		{
			ID:   "security",
			Name: "Security & Identity",
			KeyConcepts: []string{
				"authentication vs authorization", "JWT validation",
				"OWASP injection risks", "secret management", "CORS",
			},
			Questions: []BankQuestion{
				{
					Question:   "What is the difference between authentication and authorization?",
					Answer:     "Authentication establishes who the caller is; authorization decides what that identity may do. Conflating them is how endpoints end up protected by login alone with no permission checks.",
					Difficulty: question.Junior,
					Tags:       []string{"authentication", "authorization"},
				},
				{
					Question:   "How does JWT-based authentication work, and what must the server validate?",
					Answer:     "The server issues a signed token the client replays on each request. On every call it must validate the signature, issuer, audience, and expiry. Revocation needs extra machinery since tokens are self-contained.",
					Difficulty: question.Mid,
					Tags:       []string{"jwt", "tokens"},
				},
				{
					Question:   "How do parameterized queries prevent SQL injection?",
					Answer:     "Parameters keep user input in the data channel instead of splicing it into the SQL text, so the engine never parses input as code. String concatenation into queries is the vulnerability.",
					Difficulty: question.Junior,
					Tags:       []string{"sql injection", "owasp"},
				},
			},
		},
		{
			ID:   "testing",
			Name: "Testing & Quality",
			KeyConcepts: []string{
				"test pyramid", "mocking boundaries", "test isolation",
				"arrange-act-assert", "integration test data management",
			},
			Questions: []BankQuestion{
				{
					Question:   "What makes a good unit test? Describe the properties you aim for.",
					Answer:     "Fast, isolated, deterministic, and asserting observable behavior rather than implementation detail. A test that breaks on refactoring without a behavior change is testing the wrong thing.",
					Difficulty: question.Junior,
					Tags:       []string{"unit test", "principles"},
				},
				{
					Question:   "When do you mock a dependency, and when is mocking a design smell?",
					Answer:     "Mock at process boundaries you do not own: clocks, networks, databases. Needing mocks for your own domain logic usually means the logic is entangled with infrastructure and should be separated instead.",
					Difficulty: question.Senior,
					Tags:       []string{"mock", "test double"},
				},
				{
					Question:   "How do you keep integration tests reliable when they need a database?",
					Answer:     "Give each run an isolated schema or container, manage test data per test, and avoid order dependence. Flaky cleanup is the usual cause of intermittent failures.",
					Difficulty: question.Mid,
					Tags:       []string{"integration test", "fixture"},
				},
			},
		},
		{
			ID:   "web-api",
			Name: "Web APIs & HTTP",
			KeyConcepts: []string{
				"REST constraints", "status code semantics", "idempotency",
				"API versioning", "content negotiation",
			},
			Questions: []BankQuestion{
				{
					Question:   "What makes an API RESTful? Which constraints actually matter in practice?",
					Answer:     "Resources addressed by URI, manipulated through uniform methods, with stateless requests. In practice the statelessness, correct method semantics, and cacheability constraints carry the value; HATEOAS is rarely implemented.",
					Difficulty: question.Mid,
					Tags:       []string{"rest", "http"},
				},
				{
					Question:   "Which HTTP methods are idempotent and why does that matter for clients?",
					Answer:     "GET, PUT, and DELETE are idempotent, POST is not. Idempotency is what makes retrying a timed-out request safe, so clients and proxies treat the methods differently.",
					Difficulty: question.Junior,
					Tags:       []string{"idempotent", "http"},
				},
				{
					Question:   "Compare API versioning strategies: URI, header, and media type.",
					Answer:     "URI versioning is explicit and cache-friendly but leaks versions into links; header and media-type versioning keep URIs stable at the cost of discoverability and tooling support. Consistency matters more than the particular choice.",
					Difficulty: question.Senior,
					Tags:       []string{"versioning", "rest"},
				},
			},
		},
	}
}

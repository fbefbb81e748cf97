package provider

// PasswordKind is the registry key of the username/password provider.
const PasswordKind = "PasswordAuthProvider"

// NewPasswordProvider returns the local username/password provider. It has no properties.
func NewPasswordProvider() *Base {
	return &Base{
		KindKey:     PasswordKind,
		DisplayName: "Username/Password",
		Description: "Allow users to log in or register with a username and password.",
		TypeKey:     "password",
		Domain:      "self",
		BuiltIn:     true,
	}
}

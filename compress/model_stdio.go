package compress

// stdioModel is the identity model: bytes pass through to the coder
// unchanged (§4.E.2). It is the only model variant the source
// implements.
type stdioModel struct{}

func (stdioModel) Code() uint16  { return ModelSTDIO }
func (stdioModel) Name() string  { return "STDIO" }
func (stdioModel) Encode(p []byte) []byte { return p }
func (stdioModel) Decode(p []byte) []byte { return p }

func init() {
	RegisterModel(stdioModel{})
}

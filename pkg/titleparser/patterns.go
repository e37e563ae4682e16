package titleparser

import "regexp"

// pattern pairs a label with its matcher. Tables are ordered slices:
// for single-valued categories the first matching entry wins, so more
// specific entries must come before generic ones (BluRay REMUX before
// BluRay, WEB-DL before WEB). Reordering a table changes classification.
type pattern struct {
	label string
	re    *regexp.Regexp
}

var resolutionTable = []pattern{
	{string(Resolution2160p), regexp.MustCompile(`(?i)\b(2160p|4k|uhd)\b`)},
	{string(Resolution1080p), regexp.MustCompile(`(?i)\b1080[pi]\b`)},
	{string(Resolution720p), regexp.MustCompile(`(?i)\b720p\b`)},
	{string(Resolution480p), regexp.MustCompile(`(?i)\b(480p|576p)\b`)},
}

var qualityTable = []pattern{
	{string(QualityBluRayRemux), regexp.MustCompile(`(?i)\b(blu-?ray[ ._-]remux|bd-?remux|remux)\b`)},
	{string(QualityBDRip), regexp.MustCompile(`(?i)\bbd-?rip\b`)},
	{string(QualityBRRip), regexp.MustCompile(`(?i)\bbr-?rip\b`)},
	{string(QualityBluRay), regexp.MustCompile(`(?i)\b(blu-?ray|bdmv)\b`)},
	{string(QualityWEBDL), regexp.MustCompile(`(?i)\bweb[ ._-]?dl\b`)},
	{string(QualityWEBRip), regexp.MustCompile(`(?i)\bweb-?rip\b`)},
	{string(QualityWEB), regexp.MustCompile(`(?i)\bweb\b`)},
	{string(QualityHDRip), regexp.MustCompile(`(?i)\bhd-?rip\b`)},
	{string(QualityHDTV), regexp.MustCompile(`(?i)\b[hp]dtv\b`)},
	{string(QualityDVDRip), regexp.MustCompile(`(?i)\b(dvd-?rip|dvd)\b`)},
	{string(QualityCAM), regexp.MustCompile(`(?i)\b(hd-?cam|cam-?rip|cam)\b`)},
	{string(QualityTS), regexp.MustCompile(`(?i)\b(telesync|hd-?ts|ts)\b`)},
	{string(QualitySCR), regexp.MustCompile(`(?i)\b(dvd-?scr|screener|scr)\b`)},
}

var codecTable = []pattern{
	{string(CodecAVC), regexp.MustCompile(`(?i)\b(x\.?264|h\.?264|avc)\b`)},
	{string(CodecHEVC), regexp.MustCompile(`(?i)\b(x\.?265|h\.?265|hevc)\b`)},
	{string(CodecAV1), regexp.MustCompile(`(?i)\bav1\b`)},
	{string(CodecXvid), regexp.MustCompile(`(?i)\bxvid\b`)},
	{string(CodecDivX), regexp.MustCompile(`(?i)\bdivx\b`)},
}

// languageTable labels are contributed by every matching entry. A match
// is discarded when the surrounding tokens mark it as subtitle-only
// ("sub ita"), see subtitleMarked.
var languageTable = []pattern{
	{"Multi", regexp.MustCompile(`(?i)\b(multi|multilang|dual[ ._-]?audio)\b`)},
	{"English", regexp.MustCompile(`(?i)\b(english|eng)\b`)},
	{"French", regexp.MustCompile(`(?i)\b(french|truefrench|fre|fra|vff|vfq|vf)\b`)},
	{"Italian", regexp.MustCompile(`(?i)\b(italian|ita)\b`)},
	{"Spanish", regexp.MustCompile(`(?i)\b(spanish|castellano|latino|esp|spa)\b`)},
	{"German", regexp.MustCompile(`(?i)\b(german|deutsch|ger)\b`)},
	{"Portuguese", regexp.MustCompile(`(?i)\b(portuguese|dublado|por)\b`)},
	{"Russian", regexp.MustCompile(`(?i)\b(russian|rus)\b`)},
	{"Japanese", regexp.MustCompile(`(?i)\b(japanese|jap|jpn)\b`)},
	{"Korean", regexp.MustCompile(`(?i)\b(korean|kor)\b`)},
	{"Hindi", regexp.MustCompile(`(?i)\b(hindi|hin)\b`)},
}

var audioTagTable = []pattern{
	{"Atmos", regexp.MustCompile(`(?i)\batmos\b`)},
	{"TrueHD", regexp.MustCompile(`(?i)\btrue-?hd\b`)},
	{"DTS-HD MA", regexp.MustCompile(`(?i)\bdts[ ._-]?hd[ ._-]?ma\b`)},
	{"DTS-X", regexp.MustCompile(`(?i)\bdts[ ._-]?x\b`)},
	{"DTS", regexp.MustCompile(`(?i)\bdts\b`)},
	{"DDP", regexp.MustCompile(`(?i)\b(ddp|dd\+|e-?ac-?3)`)},
	{"AC3", regexp.MustCompile(`(?i)\b(ac-?3|dd)\b`)},
	{"AAC", regexp.MustCompile(`(?i)\baac\b`)},
	{"FLAC", regexp.MustCompile(`(?i)\bflac\b`)},
	{"OPUS", regexp.MustCompile(`(?i)\bopus\b`)},
	{"MP3", regexp.MustCompile(`(?i)\bmp3\b`)},
}

var visualTagTable = []pattern{
	{"HDR10+", regexp.MustCompile(`(?i)\bhdr10\+`)},
	{"HDR10", regexp.MustCompile(`(?i)\bhdr10\b`)},
	{"HDR", regexp.MustCompile(`(?i)\bhdr\b`)},
	{"DV", regexp.MustCompile(`(?i)\b(dolby[ ._-]?vision|dovi|dv)\b`)},
	{"HLG", regexp.MustCompile(`(?i)\bhlg\b`)},
	{"SDR", regexp.MustCompile(`(?i)\bsdr\b`)},
	{"10bit", regexp.MustCompile(`(?i)\b10-?bit\b`)},
	{"IMAX", regexp.MustCompile(`(?i)\bimax\b`)},
	{"3D", regexp.MustCompile(`(?i)\b3d\b`)},
}

// Channel layouts are glued to the audio codec in most names (DDP5.1),
// so a plain \b boundary never fires; match on any non-digit edge.
var channelsTable = []pattern{
	{"7.1", regexp.MustCompile(`(?:^|\D)7[. ]1(?:$|\D)`)},
	{"5.1", regexp.MustCompile(`(?:^|\D)5[. ]1(?:$|\D)`)},
	{"2.0", regexp.MustCompile(`(?:^|\D)2[. ]0(?:$|\D)`)},
}

var (
	completePattern = regexp.MustCompile(`(?i)\b(complete|integrale?|collection|batch)\b`)
	extendedPattern = regexp.MustCompile(`(?i)\b(extended|uncut)\b`)
	repackPattern   = regexp.MustCompile(`(?i)\brepack\b`)
	properPattern   = regexp.MustCompile(`(?i)\bproper\b`)
)

// Season/episode patterns, in strict priority order: the first one that
// matches decides, there is no scoring.
var (
	sxxExxPattern        = regexp.MustCompile(`(?i)\bs(\d{1,2})[ ._]?e(\d{1,3})`)
	sxxExxMorePattern    = regexp.MustCompile(`(?i)^((?:[-._ +&]?e\d{1,3})+)`)
	sxxExxRangePattern   = regexp.MustCompile(`^-(\d{1,3})`)
	episodeDigitsPattern = regexp.MustCompile(`(?i)e?(\d{1,3})`)
	nxMPattern           = regexp.MustCompile(`(?i)\b(\d{1,2})x(\d{2,3})\b`)
	seasonEpisodePattern = regexp.MustCompile(`(?i)\bseason[ ._]*(\d{1,2})[ ._]*episode[ ._]*(\d{1,3})\b`)
	seasonRangePattern   = regexp.MustCompile(`(?i)\bs(\d{1,2})[ ._]?-[ ._]?s(\d{1,2})\b`)
	loneSeasonPattern    = regexp.MustCompile(`(?i)\bs(\d{1,2})\b`)
	seasonWordPattern    = regexp.MustCompile(`(?i)\b(?:season|saison)[ ._]*(\d{1,2})\b`)
)

// Absolute-episode fallback for serialized content without season
// numbering (anime batches), tried only when no pattern above matched.
var (
	animeDashPattern   = regexp.MustCompile(`[-_ ] ?(\d{1,3})(?:v\d+)? *(?:[\[(]|$)`)
	loneEpisodePattern = regexp.MustCompile(`(?i)\be(\d{1,3})\b`)
	epWordPattern      = regexp.MustCompile(`(?i)\bep\.?[ ._]?(\d{1,3})\b`)
)

// Title terminators: the earliest offset at which any of these matches
// ends the title, regardless of which category it belongs to.
var titleTerminators = []*regexp.Regexp{
	regexp.MustCompile(`\b(19|20)\d{2}\b`),
	regexp.MustCompile(`(?i)\bs\d{1,2}(?:[ ._]?e\d{1,3})?\b`),
	regexp.MustCompile(`(?i)\b\d{1,2}x\d{2,3}\b`),
	regexp.MustCompile(`(?i)\b(?:season|saison)[ ._]?\d{1,2}\b`),
	regexp.MustCompile(`(?i)\b(2160p|1080[pi]|720p|480p|576p|4k|uhd)\b`),
	regexp.MustCompile(`(?i)\b(remux|blu-?ray|bd-?rip|br-?rip|web[ ._-]?dl|web-?rip|web|hd-?rip|[hp]dtv|dvd-?rip|dvd|hd-?cam|telesync|complete|integrale?|extended|repack|proper)\b`),
}

var (
	videoExtPattern  = regexp.MustCompile(`(?i)\.(mkv|mp4|avi|m4v|mov|wmv|flv|webm|mpg|mpeg|ts)$`)
	yearPattern      = regexp.MustCompile(`\b((19|20)\d{2})\b`)
	groupTokenOK     = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)
	bracketedPattern = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)`)
	separatorRun     = regexp.MustCompile(`[ ._]+`)
)

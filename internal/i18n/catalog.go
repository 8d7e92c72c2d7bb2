package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"
)

const (
	KeyGreeting = "greeting"
	KeySignoff  = "signoff"

	KeyPaymentSucceededSubject = "email.payment_succeeded.subject"
	KeyPaymentSucceededBody    = "email.payment_succeeded.body"
	KeyPaymentFailedSubject    = "email.payment_failed.subject"
	KeyPaymentFailedBody       = "email.payment_failed.body"
	KeyRefundSubject           = "email.refund.subject"
	KeyRefundBody              = "email.refund.body"
	KeyContactAckSubject       = "email.contact_ack.subject"
	KeyContactAckBody          = "email.contact_ack.body"
	KeyContactOpsSubject       = "email.contact_ops.subject"
	KeyVehicleLine             = "email.vehicle_line"
	KeyTierLine                = "email.tier_line"
)

func TierNameKey(tier string) string     { return "tier." + tier + ".name" }
func TierFeaturesKey(tier string) string { return "tier." + tier + ".features" }
func RoleKey(role string) string         { return "role." + role }

// FeatureSeparator splits the feature list stored under TierFeaturesKey.
const FeatureSeparator = "|"

var catalogue = build()

type entry struct {
	key    string
	en, ar string
}

var entries = []entry{
	{KeyGreeting, "Hello %s,", "مرحبًا %s،"},
	{KeySignoff, "The MAJAZ team", "فريق مجاز"},

	{KeyPaymentSucceededSubject, "Payment received for your MAJAZ assessment", "تم استلام دفعتك لخدمة تقييم مجاز"},
	{KeyPaymentSucceededBody,
		"We have received your payment of %s for request %s. Our concierge team will contact you shortly to schedule the inspection.",
		"لقد استلمنا دفعتك بقيمة %s للطلب %s. سيتواصل معك فريق الكونسيرج قريبًا لتحديد موعد الفحص."},
	{KeyPaymentFailedSubject, "Your MAJAZ payment could not be completed", "تعذّر إتمام دفعتك لدى مجاز"},
	{KeyPaymentFailedBody,
		"Your payment for request %s could not be completed (%s). You can try again from your dashboard.",
		"تعذّر إتمام الدفع للطلب %s (%s). يمكنك المحاولة مرة أخرى من لوحة التحكم."},
	{KeyRefundSubject, "Your MAJAZ refund has been issued", "تم إصدار المبلغ المسترد من مجاز"},
	{KeyRefundBody,
		"A refund of %s for request %s has been issued. It may take 5 to 10 business days to appear on your statement.",
		"تم إصدار مبلغ مسترد بقيمة %s للطلب %s. قد يستغرق ظهوره في كشف حسابك من 5 إلى 10 أيام عمل."},
	{KeyContactAckSubject, "We received your message", "لقد استلمنا رسالتك"},
	{KeyContactAckBody,
		"Thank you for contacting MAJAZ. A member of our team will reply within one business day.",
		"شكرًا لتواصلك مع مجاز. سيرد عليك أحد أعضاء فريقنا خلال يوم عمل واحد."},
	{KeyContactOpsSubject, "New enquiry from %s", "استفسار جديد من %s"},
	{KeyVehicleLine, "Vehicle: %s", "المركبة: %s"},
	{KeyTierLine, "Package: %s", "الباقة: %s"},

	{TierNameKey("basic"), "Basic", "الأساسية"},
	{TierNameKey("gold"), "Gold", "الذهبية"},
	{TierNameKey("platinum"), "Platinum", "البلاتينية"},
	{TierNameKey("diamond"), "Diamond", "الماسية"},
	{TierFeaturesKey("basic"),
		"150-point inspection|Photo report|Digital certificate",
		"فحص من 150 نقطة|تقرير مصور|شهادة رقمية"},
	{TierFeaturesKey("gold"),
		"250-point inspection|Paint depth analysis|Diagnostic scan|Video walkaround",
		"فحص من 250 نقطة|تحليل سماكة الطلاء|فحص إلكتروني شامل|جولة فيديو"},
	{TierFeaturesKey("platinum"),
		"Everything in Gold|Test drive by specialist|Provenance and history check|Price negotiation support",
		"كل ما في الباقة الذهبية|تجربة قيادة من أخصائي|التحقق من تاريخ المركبة|دعم في التفاوض على السعر"},
	{TierFeaturesKey("diamond"),
		"Everything in Platinum|Dedicated concierge|Shipping and registration handling|Post-purchase care",
		"كل ما في الباقة البلاتينية|كونسيرج مخصص|إدارة الشحن والتسجيل|رعاية ما بعد الشراء"},

	{RoleKey("founder"), "Founder", "المؤسس"},
	{RoleKey("inspector"), "Inspector", "مفتش"},
	{RoleKey("specialist"), "Specialist", "أخصائي"},
	{RoleKey("concierge"), "Concierge", "كونسيرج"},
	{RoleKey("support"), "Support", "الدعم"},
}

func build() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for _, e := range entries {
		mustSet(b, language.English, e.key, e.en)
		mustSet(b, language.Arabic, e.key, e.ar)
	}
	return b
}

func mustSet(b *catalog.Builder, tag language.Tag, key, msg string) {
	if err := b.SetString(tag, key, msg); err != nil {
		panic("i18n: " + key + ": " + err.Error())
	}
}

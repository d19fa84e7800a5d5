package export

// stylesheet keeps the 600px container and collapses .stack cells to full
// width on narrow screens. Most clients also honour the inline styles.
const stylesheet = `  <style>
    body { margin:0; padding:0; background:#f5f7fb; }
    .center-role { width:100%; background:#f5f7fb; }
    .container { width:600px; max-width:600px; background:#ffffff; }
    .header { padding:20px 24px; text-align:left; }
    .logo { display:block; border:0; outline:none; }
    .hero { padding:0 24px 16px 24px; }
    .hero-img { width:100%; height:auto; display:block; }
    .title { padding:0 24px 8px 24px; font-family:Arial,Helvetica,sans-serif; font-size:22px; line-height:1.3; color:#111111; }
    .text { padding:0 24px 16px 24px; font-family:Arial,Helvetica,sans-serif; font-size:16px; line-height:1.55; color:#333333; text-align: justify; }
    .two-columns { padding:0 24px 24px 24px; }
    .column-img { width:100%; height:auto; display:block; }
    .column-title { font-family:Arial,Helvetica,sans-serif; font-size:16px; line-height:1.4; color:#111; padding-top:8px; font-weight: bold; }
    .column-text { font-family:Arial,Helvetica,sans-serif; font-size:14px; line-height:1.5; color:#555; padding-top:6px; text-align: justify; }
    .footer { padding:20px 24px 28px 24px; font-family:Arial,Helvetica,sans-serif; font-size:12px; line-height:1.5; color:#666; background:#f8f9fc; }
    .p16 { padding: 16px; }
    .stack { display: table-cell; }

    @media screen and (max-width: 600px) {
      .container { width: 100% !important; }
      .stack { display: block !important; width: 100% !important; }
      .p16 { padding:16px !important; }
    }
  </style>
`
